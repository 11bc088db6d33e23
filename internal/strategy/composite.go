package strategy

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"lpcfmt/internal/format"
)

// Composite applies several strategies in descending priority order.
type Composite struct {
	name    string
	members []Strategy
}

// NewComposite builds a custom strategy out of members; the member list is
// copied and ordered by priority.
func NewComposite(name string, members ...Strategy) *Composite {
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b Strategy) int { return cmp.Compare(b.Priority(), a.Priority()) })
	return &Composite{name: name, members: sorted}
}

func (c *Composite) Name() string { return c.name }
func (c *Composite) Type() Type   { return TypeCustom }

func (c *Composite) Description() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return "Composite strategy: " + strings.Join(names, " + ")
}

// Members returns the strategies in application order.
func (c *Composite) Members() []Strategy { return slices.Clone(c.members) }

// Apply runs every applicable member; the last write to a setting wins.
func (c *Composite) Apply(fctx *format.Context, req *format.Request) error {
	for _, m := range c.members {
		if !m.IsApplicable(req) {
			continue
		}
		if err := m.Apply(fctx, req); err != nil {
			return fmt.Errorf("strategy %s: member %s: %w", c.name, m.Name(), err)
		}
	}
	return nil
}

func (c *Composite) IsApplicable(req *format.Request) bool {
	return slices.ContainsFunc(c.members, func(m Strategy) bool { return m.IsApplicable(req) })
}

// Priority is the mean of the member priorities, 0 for an empty composite.
func (c *Composite) Priority() float64 {
	if len(c.members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range c.members {
		sum += m.Priority()
	}
	return sum / float64(len(c.members))
}
