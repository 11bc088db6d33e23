package format

import (
	"bytes"
	"strings"

	"lpcfmt/internal/source"
)

// Writer accumulates the text of one construct. Indentation is relative:
// a Writer never emits leading whitespace on a fresh line, the enclosing
// block adds it when it nests the result.
type Writer struct {
	sf          *source.File
	buf         []byte
	atLineStart bool
}

// NewWriter creates a writer; sf may be nil when spans are never copied.
func NewWriter(sf *source.File) *Writer {
	return &Writer{sf: sf, buf: make([]byte, 0, 64)}
}

func (w *Writer) String() string { return string(w.buf) }

func (w *Writer) Len() int { return len(w.buf) }

// WriteString appends s. At the start of a line leading blanks of s are dropped.
func (w *Writer) WriteString(s string) {
	if w.atLineStart {
		s = strings.TrimLeft(s, " \t")
	}
	if s == "" {
		return
	}
	w.buf = append(w.buf, s...)
	w.updateLineState(s[len(s)-1])
}

// WriteVerbatim appends s untouched, already indented text included.
func (w *Writer) WriteVerbatim(s string) {
	if s == "" {
		return
	}
	w.buf = append(w.buf, s...)
	w.updateLineState(s[len(s)-1])
}

// WriteByte writes a single byte to the output.
func (w *Writer) WriteByte(b byte) error {
	if w.atLineStart && (b == ' ' || b == '\t') {
		return nil
	}
	w.buf = append(w.buf, b)
	w.updateLineState(b)
	return nil
}

func (w *Writer) updateLineState(last byte) {
	w.atLineStart = last == '\n'
}

// Space writes a single space if the output doesn't already end with whitespace.
func (w *Writer) Space() {
	if len(w.buf) == 0 {
		return
	}
	last := w.buf[len(w.buf)-1]
	if last == ' ' || last == '\n' || last == '\t' {
		return
	}
	w.buf = append(w.buf, ' ')
}

// MaybeSpace writes a space if the condition is true.
func (w *Writer) MaybeSpace(cond bool) {
	if cond {
		w.Space()
	}
}

// Newline writes a newline if the output doesn't already end with one.
func (w *Writer) Newline() {
	w.buf = bytes.TrimRight(w.buf, " \t")
	if len(w.buf) > 0 && w.buf[len(w.buf)-1] != '\n' {
		w.buf = append(w.buf, '\n')
	}
	w.atLineStart = len(w.buf) > 0
}

// EndsWithNewline reports whether the last byte written is '\n'.
func (w *Writer) EndsWithNewline() bool {
	return len(w.buf) > 0 && w.buf[len(w.buf)-1] == '\n'
}

// CopySpan copies a span from the source file to the output.
func (w *Writer) CopySpan(sp source.Span) bool {
	if w.sf == nil || sp.File != w.sf.ID || sp.Empty() {
		return false
	}
	return w.CopyRange(int(sp.Start), int(sp.End))
}

// CopyRange copies a range of bytes from the source file to the output.
func (w *Writer) CopyRange(start, end int) bool {
	if w.sf == nil {
		return false
	}
	start = max(start, 0)
	end = min(end, len(w.sf.Content))
	if start >= end {
		return false
	}
	chunk := w.sf.Content[start:end]
	w.buf = append(w.buf, chunk...)
	w.updateLineState(chunk[len(chunk)-1])
	return true
}

// TrimmedCopySpan copies a span from the source file to the output, trimming leading/trailing whitespace.
func (w *Writer) TrimmedCopySpan(sp source.Span) bool {
	if w.sf == nil || sp.File != w.sf.ID {
		return false
	}
	start, end := max(int(sp.Start), 0), min(int(sp.End), len(w.sf.Content))
	if start >= end {
		return false
	}
	trimmed := bytes.TrimSpace(w.sf.Content[start:end])
	if len(trimmed) == 0 {
		return false
	}
	w.buf = append(w.buf, trimmed...)
	w.updateLineState(trimmed[len(trimmed)-1])
	return true
}
