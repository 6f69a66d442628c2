package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lri/internal/config"
	"github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/display"
	lrierrors "github.com/standardbeagle/lri/internal/errors"
	"github.com/standardbeagle/lri/internal/indexing"
	"github.com/standardbeagle/lri/internal/mcp"
	"github.com/standardbeagle/lri/pkg/pathutil"
)

// buildIndex loads configuration and runs one full index of the project
func buildIndex(c *cli.Context) (*indexing.MasterIndex, *config.Config, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, err
	}

	mi := indexing.NewMasterIndex(cfg)
	if err := mi.Index(c.Context); err != nil {
		return nil, nil, fmt.Errorf("indexing failed: %w", err)
	}
	return mi, cfg, nil
}

func newFormatter(c *cli.Context) *display.Formatter {
	f := display.NewFormatter(c.App.Writer)
	if c.Bool("json") {
		f.Format = display.FormatJSON
	}
	if cwd, err := os.Getwd(); err == nil {
		f.BaseDir = cwd
	}
	return f
}

func indexCommand(c *cli.Context) error {
	start := time.Now()
	mi, cfg, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer mi.Close()

	stats := mi.Stats()
	if c.Bool("json") {
		if err := newFormatter(c).WriteStats(stats); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(c.App.Writer, "Indexed %s symbols in %s files in %s\n",
			humanize.Comma(int64(stats.TotalSymbols)), humanize.Comma(int64(stats.TotalFiles)),
			time.Since(start).Round(time.Millisecond))
		var skipped *lrierrors.MultiError
		if errors.As(mi.SkippedFiles(), &skipped) {
			fmt.Fprintf(c.App.Writer, "Skipped %d files (run 'lri status' for details)\n", len(skipped.Errors))
		}
	}

	if !c.Bool("watch") {
		return nil
	}

	if err := mi.StartWatching(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Project.Root, err)
	}
	fmt.Fprintf(c.App.Writer, "Watching %s for changes, press Ctrl+C to stop\n", cfg.Project.Root)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Fprintf(c.App.Writer, "Stopped after %d index builds\n", mi.Stats().Generation)
	return nil
}

func definitionCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return errors.New("usage: lri def FILE LINE COLUMN")
	}

	file := pathutil.ToAbsolute(c.Args().Get(0), "")
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", c.Args().Get(1), err)
	}
	column, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid column %q: %w", c.Args().Get(2), err)
	}

	oneBased := !c.Bool("zero-based")
	if oneBased {
		if line < 1 || column < 1 {
			return fmt.Errorf("line and column are one-based, got %d:%d", line, column)
		}
		line--
		column--
	}

	mi, _, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer mi.Close()

	symbols, err := mi.FindDefinition(file, line, column)
	if err != nil {
		return err
	}
	if len(symbols) == 0 && !c.Bool("json") {
		fmt.Fprintln(c.App.ErrWriter, "No definition found")
		return nil
	}

	f := newFormatter(c)
	f.OneBased = oneBased
	return f.WriteSymbols(symbols)
}

func symbolsCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: lri symbols FILE")
	}
	file := pathutil.ToAbsolute(c.Args().First(), "")

	mi, _, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer mi.Close()

	symbols, err := mi.SymbolsInFile(file)
	if err != nil {
		return err
	}
	return newFormatter(c).WriteSymbols(symbols)
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: lri search QUERY")
	}
	query := c.Args().First()

	mi, _, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer mi.Close()

	symbols, err := mi.FuzzySearch(query)
	if err != nil {
		return err
	}
	if limit := c.Int("max"); limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}

	f := newFormatter(c)
	if len(symbols) == 0 {
		return f.WriteSuggestions(query, mi.Suggest(query))
	}
	return f.WriteSymbols(symbols)
}

func statusCommand(c *cli.Context) error {
	mi, cfg, err := buildIndex(c)
	if err != nil {
		return err
	}
	defer mi.Close()

	stats := mi.Stats()
	f := newFormatter(c)
	if err := f.WriteStats(stats); err != nil {
		return err
	}
	if c.Bool("json") {
		return nil
	}

	fmt.Fprintf(c.App.Writer, "extensions: %v\n", cfg.Index.Extensions)
	fmt.Fprintf(c.App.Writer, "max file size: %s\n", humanize.IBytes(uint64(cfg.Index.MaxFileSize)))
	for _, e := range stats.Progress.Errors {
		fmt.Fprintf(c.App.Writer, "skipped %s (%s): %s\n", e.FilePath, e.Stage, e.Error)
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	// stdio carries the protocol from here on
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	server, err := mcp.NewServer(indexing.NewMasterIndex(cfg), cfg, nil)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := server.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		debug.LogMCP("shutdown error: %v\n", err)
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return debug.Fatal("MCP server error: %v\n", serveErr)
	}
	return nil
}
