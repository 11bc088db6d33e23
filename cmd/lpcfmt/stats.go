package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"lpcfmt/internal/cache"
	"lpcfmt/internal/driver"
	"lpcfmt/internal/perf"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] <path> [path...]",
	Short: "Run the formatter without writing and report pipeline statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("format", "text", "output format (text|json|prometheus)")
	statsCmd.Flags().Int("repeat", 1, "format every file this many times")
	statsCmd.Flags().String("strategy", "", "strategy to apply; default from config")
}

type statsPayload struct {
	Files           int                 `json:"files"`
	Failed          int                 `json:"failed"`
	Changed         int                 `json:"changed"`
	Performance     perf.DetailedReport `json:"performance"`
	Recommendations []string            `json:"recommendations"`
	Cache           cache.Stats         `json:"cache"`
}

func runStats(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	repeat, err := cmd.Flags().GetInt("repeat")
	if err != nil {
		return err
	}
	strategyName, err := cmd.Flags().GetString("strategy")
	if err != nil {
		return err
	}
	if repeat < 1 {
		return errors.New("stats: --repeat must be at least 1")
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	opts := driver.FormatOptions{
		Check:    true,
		Strategy: strategyName,
		Options:  e.cfg.Format,
		Jobs:     e.cfg.Pipeline.Jobs,
	}
	var payload statsPayload
	for range repeat {
		results, err := e.drv.FormatPaths(cmd.Context(), args, opts)
		if err != nil {
			return err
		}
		payload.Files = len(results)
		payload.Failed, payload.Changed = 0, 0
		for _, res := range results {
			if res.Err != nil {
				payload.Failed++
			}
			if res.Changed {
				payload.Changed++
			}
		}
	}
	payload.Performance = e.orch.Monitor().DetailedReport()
	payload.Recommendations = e.orch.Monitor().Recommendations()
	payload.Cache = e.orch.GetCacheStats()

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "text":
		renderStatsText(out, payload)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "prometheus":
		return renderStatsPrometheus(out, e.orch.Monitor())
	default:
		return fmt.Errorf("stats: unsupported output format %q", outputFormat)
	}
}

func renderStatsText(out io.Writer, p statsPayload) {
	fmt.Fprintf(out, "files: %d (changed %d, failed %d)\n", p.Files, p.Changed, p.Failed)
	st := p.Performance.Stats
	fmt.Fprintf(out, "operations: %d in %s\n", st.TotalOperations, p.Performance.TotalDuration.Round(time.Microsecond))
	for _, op := range st.Operations {
		fmt.Fprintf(out, "  %-20s count=%-6d avg=%-12s max=%s\n", op.Operation, op.Count, op.Avg, op.Max)
	}
	fmt.Fprintf(out, "cache: %d hits, %d misses, %.2f%% hit rate\n", st.CacheHits, st.CacheMisses, st.CacheHitRate)
	fmt.Fprintf(out, "result cache: %d entries, ~%d bytes, %d evictions\n", p.Cache.Size, p.Cache.MemoryUsage, p.Cache.Evictions)
	fmt.Fprintf(out, "heap delta: %d bytes\n", p.Performance.Memory.Delta)
	for _, r := range p.Recommendations {
		fmt.Fprintf(out, "hint: %s\n", r)
	}
}

func renderStatsPrometheus(out io.Writer, m perf.Monitor) error {
	rec, ok := m.(*perf.Recorder)
	if !ok {
		return errors.New("stats: performance monitoring is disabled")
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(perf.NewCollector(rec)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
