package format

import (
	"errors"
	"fmt"
	"strings"

	"lpcfmt/internal/diag"
	"lpcfmt/internal/source"
)

// DefaultMaxErrors caps how many errors one walk collects.
const DefaultMaxErrors = 50

var (
	// ErrUnsupported is returned by a category formatter asked for an
	// operation it does not own.
	ErrUnsupported = errors.New("format: unsupported operation")
	errNilNode     = errors.New("format: nil node")
)

// ErrorCollector receives the recoverable errors of one walk.
type ErrorCollector interface {
	AddError(msg, context string)
	Errors() []string
	Count() int
	HasErrors() bool
	Clear()
}

// Collector is the stock ErrorCollector. It keeps at most its cap entries and
// silently drops the rest.
type Collector struct {
	bag *diag.Bag
}

// NewCollector creates a collector holding up to max errors.
func NewCollector(max int) *Collector {
	if max < 1 {
		max = 1
	}
	return &Collector{bag: diag.NewBag(max)}
}

// AddError records msg; a non-empty context is rendered as "msg (context: ctx)".
func (c *Collector) AddError(msg, context string) {
	c.bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.FmtFormatterError,
		Message:  msg,
		Primary:  source.Span{},
		Context:  context,
	})
}

// Errors returns a copy of the collected messages.
func (c *Collector) Errors() []string { return c.bag.Messages() }

func (c *Collector) Count() int { return c.bag.Len() }

func (c *Collector) HasErrors() bool { return c.bag.Len() > 0 }

func (c *Collector) Clear() { c.bag.Reset() }

// Full reports whether further errors are being dropped.
func (c *Collector) Full() bool { return c.bag.Full() }

// Recent returns the last n messages.
func (c *Collector) Recent(n int) []string {
	all := c.Errors()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Report renders a numbered list of every collected error.
func (c *Collector) Report() string {
	if c.Count() == 0 {
		return "No errors found."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Formatting error report (%d errors):\n", c.Count())
	sb.WriteString(strings.Repeat("=", 50))
	for i, msg := range c.Errors() {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, msg)
	}
	if c.Full() {
		fmt.Fprintf(&sb, "\n\nNote: the error limit (%d) was reached; later errors were dropped.", c.bag.Cap())
	}
	return sb.String()
}
