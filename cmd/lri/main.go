package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/version"
)

var cleanupFuncs []func()

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	rootDir := c.String("root")

	cfg, err := config.LoadWithRoot(c.String("config"), rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if stubs := c.StringSlice("stubs"); len(stubs) > 0 {
		cfg.Roots.Stubs = append(cfg.Roots.Stubs, stubs...)
	}
	if vendor := c.StringSlice("vendor"); len(vendor) > 0 {
		cfg.Roots.Vendor = append(cfg.Roots.Vendor, vendor...)
	}
	if rootDir != "" {
		absRoot, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootDir, err)
		}
		cfg.Project.Root = absRoot
	}
	if c.Bool("no-gitignore") {
		cfg.Index.RespectGitignore = false
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "lri",
		Usage:                  "Lightning fast Ruby symbol index: go to definition, file outlines and fuzzy symbol search",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml); default discovers .lri.kdl then .lri.toml in the root",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory to index (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only index files matching glob patterns (e.g., --include 'app/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/spec/fixtures/**')",
			},
			&cli.StringSliceFlag{
				Name:  "stubs",
				Usage: "Directory of core or stdlib stub definitions, searched before the project",
			},
			&cli.StringSliceFlag{
				Name:  "vendor",
				Usage: "Directory of vendored gems, searched before the project",
			},
			&cli.BoolFlag{
				Name:  "no-gitignore",
				Usage: "Index files ignored by .gitignore",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug output to a file in the temp directory (requires DEBUG=1)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Index the project and print a summary",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Keep running and re-index when Ruby files change",
					},
				},
				Action: indexCommand,
			},
			{
				Name:      "def",
				Aliases:   []string{"d", "definition"},
				Usage:     "Find the definition of the symbol at a position",
				ArgsUsage: "FILE LINE COLUMN",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "zero-based",
						Usage: "LINE and COLUMN are zero-based (default one-based, as editors show them)",
					},
				},
				Action: definitionCommand,
			},
			{
				Name:      "symbols",
				Aliases:   []string{"outline"},
				Usage:     "List the symbols defined in a file",
				ArgsUsage: "FILE",
				Action:    symbolsCommand,
			},
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Fuzzy search symbol names",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"m"},
						Usage:   "Maximum results (0 uses the configured limit)",
					},
				},
				Action: searchCommand,
			},
			{
				Name:   "status",
				Usage:  "Index the project and show detailed statistics and skipped files",
				Action: statusCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the index as MCP tools over stdio",
				Action: mcpCommand,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug-log") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				cleanupFuncs = append(cleanupFuncs, func() { _ = debug.CloseDebugLog() })
				fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
			} else {
				debug.SetDebugOutput(c.App.ErrWriter)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			for i := len(cleanupFuncs) - 1; i >= 0; i-- {
				cleanupFuncs[i]()
			}
			cleanupFuncs = nil
			return nil
		},
	}
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
