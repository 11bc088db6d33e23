package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lpcfmt/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.c",
	Short: "Parse an LPC source file and print its syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().Bool("check", false, "only report diagnostics, do not print the tree")
}

func runParse(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	onlyCheck, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("failed to get check flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Parse(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	printDiagnostics(os.Stderr, result.Bag, result.File, useColor(cmd, os.Stderr))

	if !onlyCheck {
		if err := driver.WriteTree(cmd.OutOrStdout(), result.Root); err != nil {
			return err
		}
	}
	if result.Errors > 0 {
		return fmt.Errorf("parse: %d syntax errors", result.Errors)
	}
	return nil
}
