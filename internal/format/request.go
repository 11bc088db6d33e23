package format

import (
	"lpcfmt/internal/source"
	"lpcfmt/internal/tree"
)

// Mode selects how much of a tree one call formats.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
	ModeSelection   Mode = "selection"
	ModeQuick       Mode = "quick"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeFull, ModeIncremental, ModeSelection, ModeQuick:
		return true
	}
	return false
}

// Selection is a half-open byte range of the request text.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Request is one formatting call. It is never mutated after construction.
type Request struct {
	Text    string
	Tree    *tree.Node
	File    *source.File
	Options Options
	Mode    Mode
	// Strategy names the strategy to apply; empty means auto-selection.
	Strategy  string
	Selection *Selection
}
