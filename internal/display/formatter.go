package display

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/standardbeagle/lri/internal/indexing"
	"github.com/standardbeagle/lri/internal/types"
	"github.com/standardbeagle/lri/pkg/pathutil"
)

// Format selects how the CLI renders results
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json"
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Formatter writes symbols and stats for terminal users.
// Text output uses file:line:col with one-based positions when OneBased is set.
type Formatter struct {
	Out      io.Writer
	Format   Format
	OneBased bool
	// BaseDir shortens paths in text output; empty keeps them absolute
	BaseDir string
}

// NewFormatter creates a text formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{Out: out, Format: FormatText, OneBased: true}
}

// WriteSymbols prints one line per symbol, or a JSON array of SymbolInfo
func (f *Formatter) WriteSymbols(symbols []*types.Symbol) error {
	if f.Format == FormatJSON {
		return f.writeJSON(SymbolInfos(symbols))
	}
	var sb strings.Builder
	for _, s := range symbols {
		sb.WriteString(f.symbolLine(s))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(f.Out, sb.String())
	return err
}

// WriteSuggestions prints the "did you mean" hint for an empty search
func (f *Formatter) WriteSuggestions(query string, suggestions []string) error {
	if f.Format == FormatJSON {
		return f.writeJSON(map[string]any{
			"query":       query,
			"results":     []SymbolInfo{},
			"suggestions": suggestions,
		})
	}
	if len(suggestions) == 0 {
		_, err := fmt.Fprintf(f.Out, "no symbols match %q\n", query)
		return err
	}
	_, err := fmt.Fprintf(f.Out, "no symbols match %q; did you mean %s?\n", query, strings.Join(suggestions, ", "))
	return err
}

// WriteStats prints index statistics
func (f *Formatter) WriteStats(stats indexing.IndexStats) error {
	if f.Format == FormatJSON {
		return f.writeJSON(stats)
	}
	_, err := io.WriteString(f.Out, FormatStats(stats))
	return err
}

func (f *Formatter) symbolLine(s *types.Symbol) string {
	line, col := s.Start.Line, s.Start.Column
	if f.OneBased {
		line++
		col++
	}
	return fmt.Sprintf("%s:%d:%d\t%s\t%s", f.path(s.File), line, col, KindTag(s.Kind), s.DisplayName())
}

func (f *Formatter) path(file string) string {
	return pathutil.ToRelative(file, f.BaseDir)
}

func (f *Formatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatStats renders stats as a short human-readable report
func FormatStats(stats indexing.IndexStats) string {
	var sb strings.Builder
	if stats.Generation == 0 {
		sb.WriteString("index: not built\n")
	} else {
		fmt.Fprintf(&sb, "index: generation %d, built %s in %s\n",
			stats.Generation, humanize.Time(stats.LastBuilt), stats.BuildDuration.Round(time.Millisecond))
	}
	fmt.Fprintf(&sb, "files: %s\n", humanize.Comma(int64(stats.TotalFiles)))
	fmt.Fprintf(&sb, "symbols: %s\n", humanize.Comma(int64(stats.TotalSymbols)))

	kinds := make([]string, 0, len(stats.SymbolsByKind))
	for kind := range stats.SymbolsByKind {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(&sb, "  %-18s %s\n", kind, humanize.Comma(int64(stats.SymbolsByKind[kind])))
	}

	for i, root := range stats.Roots {
		label := "extra root"
		if i == len(stats.Roots)-1 {
			label = "project root"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, root)
	}
	if stats.CacheHits > 0 {
		fmt.Fprintf(&sb, "cache hits: %s\n", humanize.Comma(stats.CacheHits))
	}
	if n := len(stats.Progress.Errors); n > 0 {
		fmt.Fprintf(&sb, "skipped files: %d\n", n)
	}
	if stats.Watching {
		sb.WriteString("watching for changes\n")
	}
	return sb.String()
}
