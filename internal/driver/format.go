package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"fortio.org/safecast"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/format"
	"lpcfmt/internal/orchestrator"
	"lpcfmt/internal/parser"
	"lpcfmt/internal/source"
)

var (
	// ErrNoFiles is returned when the paths hold no LPC source.
	ErrNoFiles = errors.New("driver: no source files found")
	// ErrFormatFailed marks a file the orchestrator fell back on.
	ErrFormatFailed = errors.New("driver: formatting failed")
)

// FormatOptions configures a run over files.
type FormatOptions struct {
	// Check leaves files untouched; Changed tells whether they would change.
	Check bool
	// Diff fills FormatResult.Diff and leaves files untouched.
	Diff bool
	// Stdout returns the text in FormatResult.Formatted instead of writing.
	Stdout         bool
	Strategy       string
	Mode           format.Mode
	Options        format.Options
	Jobs           int
	MaxDiagnostics int
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Skipped   bool
	Err       error
	Formatted []byte
	Diff      string
	Outcome   orchestrator.Result
}

// Driver feeds files to one orchestrator.
type Driver struct {
	orch *orchestrator.Orchestrator
	log  *zap.SugaredLogger
}

// New wraps o. log may be nil.
func New(o *orchestrator.Orchestrator, log *zap.SugaredLogger) *Driver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Driver{orch: o, log: log}
}

// Orchestrator returns the wrapped orchestrator.
func (d *Driver) Orchestrator() *orchestrator.Orchestrator { return d.orch }

// FormatPaths formats files and directories in parallel, opts.Jobs at a
// time (GOMAXPROCS when zero). Results keep the sorted file order. Files
// that fail carry their error in the result; the returned error is reserved
// for collection failures and cancellation.
func (d *Driver) FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := collectSourceFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// индексы уникальны для каждой горутины, мьютекс не нужен
	results := make([]FormatResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = d.formatFile(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (d *Driver) formatFile(ctx context.Context, path string, opts FormatOptions) FormatResult {
	result := FormatResult{Path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		result.Err = err
		return result
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		result.Skipped = true
		return result
	}

	outcome := d.FormatSource(ctx, path, raw, opts)
	result.Outcome = outcome
	if !outcome.Success {
		result.Err = fmt.Errorf("%w: %s", ErrFormatFailed, lastError(outcome.Errors))
		return result
	}
	formatted := []byte(outcome.FormattedText)
	result.Changed = !bytes.Equal(raw, formatted)
	d.log.Debugw("formatted", "path", path, "changed", result.Changed,
		"strategy", outcome.StrategyApplied, "cached", outcome.Cached, "duration", outcome.Duration)

	switch {
	case opts.Diff:
		if result.Changed {
			result.Diff = Diff(path, string(raw), outcome.FormattedText)
		}
		return result
	case opts.Check:
		return result
	case opts.Stdout:
		result.Formatted = formatted
		return result
	}

	if result.Changed {
		mode := os.FileMode(0o644)
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(path, formatted, mode.Perm()); err != nil {
			result.Err = err
		}
	}
	return result
}

// FormatSource parses content and formats it. name labels the text in
// diagnostics and need not exist on disk.
func (d *Driver) FormatSource(ctx context.Context, name string, content []byte, opts FormatOptions) orchestrator.Result {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddSource(name, content))

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}
	bag := diag.NewBag(maxDiag)
	maxErrors, convErr := safecast.Conv[uint](maxDiag)
	if convErr != nil {
		maxErrors = 0
	}
	parsed := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}, MaxErrors: maxErrors})
	if parsed.Errors > 0 {
		d.log.Debugw("parse errors, unparsed regions are kept verbatim", "path", name, "errors", parsed.Errors)
	}

	return d.orch.Format(ctx, &format.Request{
		Text:     string(file.Content),
		Tree:     parsed.Root,
		File:     file,
		Options:  opts.Options,
		Mode:     opts.Mode,
		Strategy: opts.Strategy,
	})
}

func lastError(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return errs[len(errs)-1]
}
