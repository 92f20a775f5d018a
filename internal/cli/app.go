package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/ppiankov/politikcred/internal/embed"
	"github.com/ppiankov/politikcred/internal/engine"
	"github.com/ppiankov/politikcred/internal/logging"
	"github.com/ppiankov/politikcred/internal/metrics"
	"github.com/ppiankov/politikcred/internal/model"
	"github.com/ppiankov/politikcred/internal/rules"
	"github.com/ppiankov/politikcred/internal/store"
	log "github.com/sirupsen/logrus"
)

// app is the wired runtime shared by the store-backed commands
type app struct {
	cfg      *model.Config
	rules    *rules.Compiled
	store    store.Store
	metrics  *metrics.Metrics
	embedder embed.Provider
}

// newApp loads configuration, sets up logging and opens the store. The
// embedding provider is only built when withEmbedder is set.
func newApp(ctx context.Context, withEmbedder bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, err
	}

	compiled, err := compileRules(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, rules: compiled, metrics: metrics.New()}

	if withEmbedder {
		a.embedder, err = embed.Build(cfg)
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
		if a.embedder == nil {
			log.Debug("No embedding provider configured, keyword matching only")
		}
	}

	a.store, err = store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"driver": cfg.Store.Driver}).Debug("Store opened")
	return a, nil
}

func compileRules(cfg *model.Config) (*rules.Compiled, error) {
	if cfg.RulesFile == "" && cfg.Matching.MinKeywordLength == rules.DefaultMinKeywordLength {
		return rules.MustCompileDefault(), nil
	}
	r, err := rules.LoadFile(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return rules.Compile(r, cfg.Matching.MinKeywordLength)
}

func (a *app) engine() *engine.Engine {
	return engine.New(a.cfg, a.rules, a.embedder, engine.RepositoriesFrom(a.store), a.metrics)
}

func (a *app) Close() error {
	err := a.store.Close()
	if lerr := logging.Close(); err == nil {
		err = lerr
	}
	return err
}

var (
	okLine   = color.New(color.FgGreen)
	failLine = color.New(color.FgRed)
	warnLine = color.New(color.FgYellow)
	headLine = color.New(color.FgCyan)
)

func printOK(format string, a ...interface{}) {
	okLine.Fprintf(os.Stderr, "✓ "+format+"\n", a...)
}

func printFail(format string, a ...interface{}) {
	failLine.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func printWarn(format string, a ...interface{}) {
	warnLine.Fprintf(os.Stderr, "⚠ "+format+"\n", a...)
}

func printBanner(title string) {
	headLine.Fprintf(os.Stderr, "\n═══════════════════════════════════════════════════════════\n")
	headLine.Fprintf(os.Stderr, "  %s\n", title)
	headLine.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n\n")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMatchSummary(s model.MatchSummary) {
	fmt.Fprintf(os.Stderr, "  Officials:   %d\n", s.Officials)
	fmt.Fprintf(os.Stderr, "  Promises:    %d\n", s.Promises)
	fmt.Fprintf(os.Stderr, "  Matched:     %d\n", s.Matched)
	fmt.Fprintf(os.Stderr, "  Unmatched:   %d\n", s.Unmatched)
	fmt.Fprintf(os.Stderr, "  Duplicates:  %d\n", s.Duplicates)
	fmt.Fprintf(os.Stderr, "  Fallbacks:   %d\n", s.Fallbacks)
	fmt.Fprintf(os.Stderr, "  Failed:      %d\n", s.Failed)
	if s.Cancelled > 0 || s.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Cancelled:   %d officials, %d promises left pending\n", s.Cancelled, s.Skipped)
	}
	fmt.Fprintf(os.Stderr, "  Duration:    %v\n\n", s.Duration.Round(time.Millisecond))
	for _, e := range s.Errors {
		printFail("%s", e.Error())
	}
}

func printScoreSummary(s model.ScoreSummary) {
	fmt.Fprintf(os.Stderr, "  Updated:     %d\n", s.Updated)
	fmt.Fprintf(os.Stderr, "  Failed:      %d\n", s.Failed)
	fmt.Fprintf(os.Stderr, "  Duration:    %v\n\n", s.Duration.Round(time.Millisecond))
	for _, e := range s.Errors {
		printFail("%s", e.Error())
	}
}
