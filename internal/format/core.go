package format

import (
	"slices"
	"strings"

	"lpcfmt/internal/token"
)

// DefaultMaxNodes is the node ceiling of one walk.
const DefaultMaxNodes = 10000

// Core holds operator spacing, modifier ordering and the node budget of one walk.
type Core struct {
	layout    *Layout
	options   *Options
	nodeCount int
	maxNodes  int
}

func NewCore(layout *Layout, options *Options) *Core {
	maxNodes := options.MaxNodeCount
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	return &Core{layout: layout, options: options, maxNodes: maxNodes}
}

// FormatOperator returns op with the configured surrounding spaces. Member
// access and scope operators are never spaced.
func (c *Core) FormatOperator(op string, assignment bool) string {
	switch op {
	case "->", ".", "::":
		return op
	}
	if k, ok := token.LookupPunct(op); ok && k.IsAssignOp() {
		assignment = true
	}
	spaced := c.layout.SpaceAroundOperators
	if assignment {
		spaced = c.layout.SpaceAroundAssignment
	}
	if spaced {
		return " " + op + " "
	}
	return op
}

// FormatComma is "," followed by a space when the layout asks for one.
func (c *Core) FormatComma() string {
	if c.layout.SpaceAfterComma {
		return ", "
	}
	return ","
}

// CheckNodeLimit counts one more node and reports whether the walk may go on.
func (c *Core) CheckNodeLimit() bool {
	c.nodeCount++
	return c.nodeCount <= c.maxNodes
}

func (c *Core) ResetNodeCount() { c.nodeCount = 0 }

func (c *Core) NodeCount() int { return c.nodeCount }

func (c *Core) MaxNodes() int { return c.maxNodes }

// SetMaxNodes replaces the ceiling; non-positive values restore the default.
func (c *Core) SetMaxNodes(n int) {
	if n <= 0 {
		n = DefaultMaxNodes
	}
	c.maxNodes = n
}

// AtNodeLimit reports whether the ceiling has been reached.
func (c *Core) AtNodeLimit() bool { return c.nodeCount >= c.maxNodes }

// FormatModifiers orders modifiers by FunctionModifierOrder and joins them.
// Unknown modifiers keep their relative order after the known ones.
func (c *Core) FormatModifiers(mods []string) string {
	if len(mods) == 0 {
		return ""
	}
	order := c.options.FunctionModifierOrder
	if len(order) == 0 {
		order = DefaultModifierOrder
	}
	rank := func(m string) int {
		if i := slices.Index(order, m); i >= 0 {
			return i
		}
		return 999
	}
	sorted := slices.Clone(mods)
	slices.SortStableFunc(sorted, func(a, b string) int { return rank(a) - rank(b) })
	return strings.Join(sorted, " ")
}
