package diag

import (
	"lpcfmt/internal/source"
)

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Context is a short excerpt of the node being formatted, if any.
	Context string
}

// Text renders the diagnostic the way error collectors expose it.
func (d Diagnostic) Text() string {
	if d.Context != "" {
		return d.Message + " (context: " + d.Context + ")"
	}
	return d.Message
}
