// Package validate scores formatted output against a set of rules.
package validate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"lpcfmt/internal/format"
	"lpcfmt/internal/tree"
)

// Severity orders validation outcomes: Info < Warning < Error < Critical.
type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// MarshalText keeps JSON and YAML output readable.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Input is what every rule sees. Tree and Context may be nil.
type Input struct {
	Original  string
	Formatted string
	Tree      *tree.Node
	Context   *format.Context
}

// Outcome is the verdict of a single rule.
type Outcome struct {
	Passed   bool
	Severity Severity
	Messages []string
	Score    int
}

// Rule is one independent check.
type Rule interface {
	Name() string
	Description() string
	Priority() int
	Check(in Input) (Outcome, error)
}

// Stats counts what one validation did.
type Stats struct {
	RulesChecked int           `json:"rulesChecked"`
	RulesPassed  int           `json:"rulesPassed"`
	IssuesFound  int           `json:"issuesFound"`
	Duration     time.Duration `json:"duration"`
}

// Result aggregates the outcomes of all rules that ran.
type Result struct {
	Passed   bool     `json:"passed"`
	Severity Severity `json:"severity"`
	Messages []string `json:"messages"`
	Score    int      `json:"qualityScore"`
	Stats    Stats    `json:"stats"`
}

// Config tunes the verdict.
type Config struct {
	StrictMode      bool          `toml:"strict_mode" yaml:"strict_mode" json:"strictMode"`
	MaxErrors       int           `toml:"max_errors" yaml:"max_errors" json:"maxErrors" validate:"gte=0"`
	MinQualityScore int           `toml:"min_quality_score" yaml:"min_quality_score" json:"minQualityScore" validate:"gte=0,lte=100"`
	Timeout         time.Duration `toml:"timeout" yaml:"timeout" json:"timeout" validate:"gte=0"`
	// EnabledRules, when non-empty, is the allow list.
	EnabledRules  []string `toml:"enabled_rules" yaml:"enabled_rules" json:"enabledRules"`
	DisabledRules []string `toml:"disabled_rules" yaml:"disabled_rules" json:"disabledRules"`
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{
		MaxErrors:       10,
		MinQualityScore: 70,
		Timeout:         5 * time.Second,
	}
}

// ErrTimeout is reported when the rule budget runs out.
var ErrTimeout = errors.New("validate: timeout")

// Validator runs the registered rules. It is safe for concurrent use.
type Validator struct {
	mu    sync.RWMutex
	cfg   Config
	rules map[string]Rule
	clock clock.Clock
}

// New creates a Validator with the built-in rules.
func New(cfg Config) *Validator {
	v := &Validator{cfg: cfg, rules: make(map[string]Rule), clock: clock.New()}
	for _, r := range Builtin() {
		v.rules[r.Name()] = r
	}
	return v
}

// WithClock swaps the clock used for Stats.Duration and the timeout.
func (v *Validator) WithClock(c clock.Clock) *Validator {
	v.mu.Lock()
	v.clock = c
	v.mu.Unlock()
	return v
}

// RegisterRule adds or replaces a rule by name.
func (v *Validator) RegisterRule(r Rule) {
	v.mu.Lock()
	v.rules[r.Name()] = r
	v.mu.Unlock()
}

// UnregisterRule removes a rule and reports whether it existed.
func (v *Validator) UnregisterRule(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.rules[name]; !ok {
		return false
	}
	delete(v.rules, name)
	return true
}

// Rules returns every registered rule by descending priority.
func (v *Validator) Rules() []Rule {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sortedLocked(func(Rule) bool { return true })
}

func (v *Validator) sortedLocked(keep func(Rule) bool) []Rule {
	out := make([]Rule, 0, len(v.rules))
	for _, r := range v.rules {
		if keep(r) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Rule) int {
		if d := b.Priority() - a.Priority(); d != 0 {
			return d
		}
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

func (v *Validator) enabled(r Rule) bool {
	if slices.Contains(v.cfg.DisabledRules, r.Name()) {
		return false
	}
	if len(v.cfg.EnabledRules) > 0 {
		return slices.Contains(v.cfg.EnabledRules, r.Name())
	}
	return true
}

// UpdateConfig replaces the configuration.
func (v *Validator) UpdateConfig(cfg Config) {
	v.mu.Lock()
	v.cfg = cfg
	v.mu.Unlock()
}

// Config returns a copy of the configuration.
func (v *Validator) Config() Config {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c := v.cfg
	c.EnabledRules = slices.Clone(c.EnabledRules)
	c.DisabledRules = slices.Clone(c.DisabledRules)
	return c
}

// ValidateParseTree reports whether root is a usable tree: non-nil and with
// no nil children anywhere.
func (v *Validator) ValidateParseTree(root *tree.Node) bool {
	if root == nil {
		return false
	}
	ok := true
	root.Walk(func(n *tree.Node) bool {
		for i := range n.ChildCount() {
			if n.Child(i) == nil {
				ok = false
			}
		}
		return ok
	})
	return ok
}

// Validate runs the enabled rules by descending priority and aggregates
// them. Rules stop early when ctx ends or Config.Timeout elapses; the rules
// that ran still count.
func (v *Validator) Validate(ctx context.Context, in Input) Result {
	v.mu.RLock()
	cfg := v.cfg
	rules := v.sortedLocked(v.enabled)
	clk := v.clock
	v.mu.RUnlock()

	start := clk.Now()
	var res Result
	total := 0
	for _, r := range rules {
		if err := expired(ctx, clk, start, cfg.Timeout); err != nil {
			res.Messages = append(res.Messages, fmt.Sprintf("Validation stopped after %d rules: %v", res.Stats.RulesChecked, err))
			res.Stats.IssuesFound++
			res.Severity = max(res.Severity, Error)
			break
		}
		out, err := runRule(r, in)
		if err != nil {
			res.Messages = append(res.Messages, fmt.Sprintf("Rule %s failed: %v", r.Name(), err))
			res.Stats.IssuesFound++
			res.Severity = max(res.Severity, Error)
			continue
		}
		res.Stats.RulesChecked++
		total += clampScore(out.Score)
		if out.Passed {
			res.Stats.RulesPassed++
			continue
		}
		res.Stats.IssuesFound += len(out.Messages)
		for _, m := range out.Messages {
			res.Messages = append(res.Messages, "["+r.Name()+"] "+m)
		}
		res.Severity = max(res.Severity, out.Severity)
	}
	if res.Stats.RulesChecked > 0 {
		res.Score = int(math.Round(float64(total) / float64(res.Stats.RulesChecked)))
	}
	res.Passed = verdict(cfg, res)
	res.Stats.Duration = clk.Since(start)
	return res
}

func expired(ctx context.Context, clk clock.Clock, start time.Time, budget time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if budget > 0 && clk.Since(start) > budget {
		return fmt.Errorf("%w after %s", ErrTimeout, budget)
	}
	return nil
}

func runRule(r Rule, in Input) (out Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Check(in)
}

func verdict(cfg Config, res Result) bool {
	switch {
	case cfg.StrictMode && res.Severity != Info:
		return false
	case res.Severity == Critical:
		return false
	case res.Stats.IssuesFound > cfg.MaxErrors:
		return false
	case res.Score < cfg.MinQualityScore:
		return false
	}
	return true
}

func clampScore(s int) int {
	return min(max(s, 0), 100)
}
