package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lpcfmt/internal/prof"
	"lpcfmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "lpcfmt",
	Short: "LPC source formatter",
	Long:  `lpcfmt formats LPC source files and reports on the formatting pipeline`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		profiling = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		stopProfiling()
	},
}

var profiling *prof.Session

func stopProfiling() {
	if err := profiling.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop profiling: %v\n", err)
	}
}

// main registers subcommands and persistent flags and executes the root
// command. A failing command exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("config", "", "config file (default: nearest .lpcfmt.toml or .lpcfmt.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error), overrides the config file")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console|json), overrides the config file")
	rootCmd.PersistentFlags().String("cache-file", "", "persist the result cache in this file between runs")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to the file")

	if err := rootCmd.Execute(); err != nil {
		stopProfiling()
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return isTerminalFd(f.Fd())
}

func isTerminalFd(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// useColor resolves --color against the file the output goes to.
func useColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch colorFlag {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(f)
}
