package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"lpcfmt/internal/driver"
	"lpcfmt/internal/format"
	"lpcfmt/internal/perf"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Format LPC source files",
	Long:  `Format rewrites files in place. With no path, or "-", it reads stdin and writes stdout.`,
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list files whose formatting differs and fail if any")
	fmtCmd.Flags().Bool("diff", false, "print a unified diff instead of rewriting files")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().String("strategy", "", "strategy to apply (standard|compact|debug or a custom name); default from config")
	fmtCmd.Flags().String("mode", "full", "formatting mode (full|quick|incremental)")
	fmtCmd.Flags().Bool("timings", false, "print per-file phase timings to stderr")
	fmtCmd.Flags().Int("jobs", 0, "files formatted in parallel (0 = GOMAXPROCS)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	flags := cmd.Flags()
	check, err := flags.GetBool("check")
	if err != nil {
		return err
	}
	showDiff, err := flags.GetBool("diff")
	if err != nil {
		return err
	}
	outputFormat, err := flags.GetString("format")
	if err != nil {
		return err
	}
	writeToStdout, err := flags.GetBool("stdout")
	if err != nil {
		return err
	}
	strategyName, err := flags.GetString("strategy")
	if err != nil {
		return err
	}
	modeName, err := flags.GetString("mode")
	if err != nil {
		return err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return err
	}
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	mode := format.Mode(modeName)
	if !mode.Valid() || mode == format.ModeSelection {
		return fmt.Errorf("fmt: unsupported mode %q", modeName)
	}
	if writeToStdout && (check || showDiff) {
		return errors.New("fmt: --stdout cannot be used with --check or --diff")
	}
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("fmt: unsupported output format %q", outputFormat)
	}
	if writeToStdout && outputFormat != "text" {
		return errors.New("fmt: --stdout is only supported with text output")
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	opts := driver.FormatOptions{
		Check:          check,
		Diff:           showDiff,
		Stdout:         writeToStdout,
		Strategy:       strategyName,
		Mode:           mode,
		Options:        e.cfg.Format,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if jobs == 0 {
		opts.Jobs = e.cfg.Pipeline.Jobs
	}

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		return formatStdin(cmd, e, opts)
	}

	results, err := e.drv.FormatPaths(cmd.Context(), args, opts)
	if err != nil {
		return err
	}
	if timings {
		printTimings(os.Stderr, results)
	}

	var hasErrors, hasChanges bool
	switch {
	case outputFormat == "json":
		if err := renderFmtJSON(cmd.OutOrStdout(), results, check); err != nil {
			return err
		}
		hasErrors, hasChanges = summarize(results)
	case writeToStdout:
		hasErrors = renderFmtStdout(cmd.OutOrStdout(), results)
	case showDiff:
		hasErrors, hasChanges = renderFmtDiff(cmd.OutOrStdout(), results, useColor(cmd, os.Stdout))
	default:
		hasErrors, hasChanges = renderFmtText(cmd.OutOrStdout(), results, check, quiet)
	}

	if hasErrors {
		return errors.New("fmt: failed to format some files")
	}
	if (check || showDiff) && hasChanges {
		return errors.New("fmt: formatting changes required")
	}
	return nil
}

func formatStdin(cmd *cobra.Command, e *env, opts driver.FormatOptions) error {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(raw)) == "" {
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}
	res := e.drv.FormatSource(cmd.Context(), "<stdin>", raw, opts)
	if !res.Success {
		for _, msg := range res.Errors {
			fmt.Fprintf(os.Stderr, "fmt: <stdin>: %s\n", msg)
		}
		return errors.New("fmt: failed to format stdin")
	}
	changed := res.FormattedText != string(raw)
	switch {
	case opts.Diff:
		_, err = io.WriteString(cmd.OutOrStdout(), driver.Diff("<stdin>", string(raw), res.FormattedText))
	case opts.Check:
		if changed {
			return errors.New("fmt: formatting changes required")
		}
	default:
		_, err = io.WriteString(cmd.OutOrStdout(), res.FormattedText)
	}
	return err
}

func summarize(results []driver.FormatResult) (hasErrors, hasChanges bool) {
	for _, res := range results {
		hasErrors = hasErrors || res.Err != nil
		hasChanges = hasChanges || res.Changed
	}
	return hasErrors, hasChanges
}

func renderFmtStdout(out io.Writer, results []driver.FormatResult) (hasErrors bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if res.Skipped {
			continue
		}
		_, _ = out.Write(res.Formatted)
	}
	return hasErrors
}

func renderFmtText(out io.Writer, results []driver.FormatResult, check, quiet bool) (hasErrors, hasChanges bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		hasChanges = true
		if quiet {
			continue
		}
		if check {
			fmt.Fprintln(out, res.Path)
		} else {
			fmt.Fprintf(out, "reformatted %s\n", res.Path)
		}
	}
	return hasErrors, hasChanges
}

func renderFmtDiff(out io.Writer, results []driver.FormatResult, colored bool) (hasErrors, hasChanges bool) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	header := color.New(color.Bold)
	for _, c := range []*color.Color{added, removed, header} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		if res.Diff == "" {
			continue
		}
		hasChanges = true
		for _, line := range strings.SplitAfter(res.Diff, "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"), strings.HasPrefix(line, "@@"):
				header.Fprint(out, line)
			case strings.HasPrefix(line, "+"):
				added.Fprint(out, line)
			case strings.HasPrefix(line, "-"):
				removed.Fprint(out, line)
			default:
				fmt.Fprint(out, line)
			}
		}
	}
	return hasErrors, hasChanges
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path     string      `json:"path"`
		Changed  bool        `json:"changed"`
		Skipped  bool        `json:"skipped,omitempty"`
		Error    string      `json:"error,omitempty"`
		CheckRun bool        `json:"check"`
		Strategy string      `json:"strategy,omitempty"`
		Cached   bool        `json:"cached,omitempty"`
		Timings  perf.Report `json:"timings"`
	}

	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:     res.Path,
			Changed:  res.Changed,
			Skipped:  res.Skipped,
			CheckRun: check,
			Strategy: res.Outcome.StrategyApplied,
			Cached:   res.Outcome.Cached,
			Timings:  res.Outcome.Timings,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func printTimings(out io.Writer, results []driver.FormatResult) {
	for _, res := range results {
		if res.Skipped || len(res.Outcome.Timings.Phases) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s: %.2f ms", res.Path, res.Outcome.Timings.TotalMS)
		for _, ph := range res.Outcome.Timings.Phases {
			fmt.Fprintf(out, " %s=%.2f", ph.Name, ph.DurationMS)
		}
		fmt.Fprintln(out)
	}
}
