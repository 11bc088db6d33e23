package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/source"
)

// printDiagnostics writes one line per diagnostic as path:line:col, with
// the offending source line and a caret underneath.
func printDiagnostics(out io.Writer, bag *diag.Bag, file *source.File, colored bool) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	sevColor := map[diag.Severity]*color.Color{
		diag.SevInfo:     color.New(color.FgCyan),
		diag.SevWarning:  color.New(color.FgYellow),
		diag.SevError:    color.New(color.FgRed, color.Bold),
		diag.SevCritical: color.New(color.FgMagenta, color.Bold),
	}
	bag.Sort()
	for _, d := range bag.Items() {
		pos := file.Position(d.Primary.Start)
		sev := d.Severity.String()
		if c, ok := sevColor[d.Severity]; ok && colored {
			c.EnableColor()
			sev = c.Sprint(sev)
		}
		fmt.Fprintf(out, "%s:%d:%d: %s %s: %s\n", file.Path, pos.Line, pos.Col, sev, d.Code.ID(), d.Text())
		line := sourceLine(file, pos.Line)
		if line == "" {
			continue
		}
		// колонка считается в байтах, отступ под каретку в ширине экрана
		prefix := line[:min(int(pos.Col)-1, len(line))]
		fmt.Fprintf(out, "    %s\n    %*s^\n", line, runewidth.StringWidth(prefix), "")
	}
}

// sourceLine returns the 1-based line without its newline.
func sourceLine(file *source.File, line uint32) string {
	if line == 0 {
		return ""
	}
	content := file.Content
	start := 0
	if line > 1 {
		if int(line-2) >= len(file.LineIdx) {
			return ""
		}
		start = int(file.LineIdx[line-2]) + 1
	}
	end := len(content)
	if int(line-1) < len(file.LineIdx) {
		end = int(file.LineIdx[line-1])
	}
	if start > end {
		return ""
	}
	return string(content[start:end])
}
