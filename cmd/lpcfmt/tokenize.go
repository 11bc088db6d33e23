package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"lpcfmt/internal/driver"
	"lpcfmt/internal/source"
	"lpcfmt/internal/token"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.c",
	Short: "Tokenize an LPC source file",
	Long:  `Tokenize breaks an LPC source file into tokens, comments and preprocessor lines included`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	result, err := driver.Tokenize(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	printDiagnostics(os.Stderr, result.Bag, result.File, useColor(cmd, os.Stderr))

	switch outputFormat {
	case "pretty":
		return writeTokensPretty(cmd.OutOrStdout(), result.Tokens, result.File)
	case "json":
		return writeTokensJSON(cmd.OutOrStdout(), result.Tokens, result.File)
	default:
		return fmt.Errorf("unknown format: %s", outputFormat)
	}
}

func writeTokensPretty(out io.Writer, toks []token.Token, file *source.File) error {
	for _, tok := range toks {
		for _, tv := range tok.Leading {
			if !tv.IsComment() {
				continue
			}
			kind := "LineComment"
			if tv.Kind == token.TriviaBlockComment {
				kind = "BlockComment"
			}
			pos := file.Position(tv.Span.Start)
			if _, err := fmt.Fprintf(out, "%4d:%-3d %-14s %q\n", pos.Line, pos.Col, kind, tv.Text); err != nil {
				return err
			}
		}
		pos := file.Position(tok.Span.Start)
		if _, err := fmt.Fprintf(out, "%4d:%-3d %-14s %q\n", pos.Line, pos.Col, tok.Kind, tok.Text); err != nil {
			return err
		}
	}
	return nil
}

func writeTokensJSON(out io.Writer, toks []token.Token, file *source.File) error {
	type jsonToken struct {
		Kind     string   `json:"kind"`
		Text     string   `json:"text"`
		Line     uint32   `json:"line"`
		Col      uint32   `json:"col"`
		Start    uint32   `json:"start"`
		End      uint32   `json:"end"`
		Comments []string `json:"comments,omitempty"`
	}
	payload := make([]jsonToken, 0, len(toks))
	for _, tok := range toks {
		pos := file.Position(tok.Span.Start)
		jt := jsonToken{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Line:  pos.Line,
			Col:   pos.Col,
			Start: tok.Span.Start,
			End:   tok.Span.End,
		}
		for _, c := range tok.Comments() {
			jt.Comments = append(jt.Comments, c.Text)
		}
		payload = append(payload, jt)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
