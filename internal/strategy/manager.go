package strategy

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"

	"lpcfmt/internal/format"
)

// ErrUnknownStrategy is wrapped by lookups of unregistered strategies.
var ErrUnknownStrategy = errors.New("strategy: unknown formatting strategy")

// ErrInvalidStrategy is wrapped by Register when admission checks fail.
var ErrInvalidStrategy = errors.New("strategy: invalid strategy")

// Info describes a registered strategy.
type Info struct {
	Name        string  `json:"name"`
	Type        Type    `json:"type"`
	Description string  `json:"description"`
	Priority    float64 `json:"priority"`
}

// Verdict is the outcome of ValidateStrategy.
type Verdict struct {
	Valid  bool
	Errors []string
}

// builtinOrder fixes iteration order so ties in priority resolve the same
// way on every call.
var builtinOrder = []Type{TypeCompact, TypeStandard, TypeDebug}

// Manager is the strategy registry. It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	builtin map[Type]Strategy
	custom  map[string]Strategy
	log     *zap.SugaredLogger
}

// NewManager registers the Compact, Standard and Debug strategies.
func NewManager(log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{
		builtin: map[Type]Strategy{
			TypeCompact:  Compact{},
			TypeStandard: Standard{},
			TypeDebug:    Debug{Log: log.Named("debug")},
		},
		custom: make(map[string]Strategy),
		log:    log,
	}
}

// Get returns the registered strategy of type t.
func (m *Manager) Get(t Type) (Strategy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.builtin[t]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, t)
}

// Lookup resolves an id given by a caller: a type first, then a custom name.
func (m *Manager) Lookup(id string) (Strategy, error) {
	if s, err := m.Get(Type(id)); err == nil {
		return s, nil
	}
	if s, ok := m.Custom(id); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, id)
}

// Custom returns the custom strategy registered under name.
func (m *Manager) Custom(name string) (Strategy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.custom[name]
	return s, ok
}

// Register admits s after ValidateStrategy. Custom strategies are keyed by
// name; others replace the strategy of their type.
func (m *Manager) Register(s Strategy) error {
	if v := m.ValidateStrategy(s); !v.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidStrategy, v.Errors)
	}
	m.mu.Lock()
	if s.Type() == TypeCustom {
		m.custom[s.Name()] = s
	} else {
		m.builtin[s.Type()] = s
	}
	m.mu.Unlock()
	m.log.Debugw("strategy registered", "name", s.Name(), "type", s.Type())
	return nil
}

// RemoveCustomStrategy drops the custom strategy name; it reports whether
// one existed.
func (m *Manager) RemoveCustomStrategy(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.custom[name]; !ok {
		return false
	}
	delete(m.custom, name)
	return true
}

// all lists built-ins in fixed order, then customs by name.
func (m *Manager) all() []Strategy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Strategy, 0, len(m.builtin)+len(m.custom))
	for _, t := range builtinOrder {
		if s, ok := m.builtin[t]; ok {
			out = append(out, s)
		}
	}
	names := make([]string, 0, len(m.custom))
	for name := range m.custom {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		out = append(out, m.custom[name])
	}
	return out
}

// SelectBest returns the applicable strategy of highest priority, or
// Standard when none applies. Equal priorities keep registration order.
func (m *Manager) SelectBest(req *format.Request) Strategy {
	var candidates []Strategy
	for _, s := range m.all() {
		if s.IsApplicable(req) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		if s, err := m.Get(TypeStandard); err == nil {
			return s
		}
		return Standard{}
	}
	slices.SortStableFunc(candidates, func(a, b Strategy) int { return cmp.Compare(b.Priority(), a.Priority()) })
	return candidates[0]
}

// AvailableStrategies describes every registered strategy.
func (m *Manager) AvailableStrategies() []Info {
	all := m.all()
	out := make([]Info, len(all))
	for i, s := range all {
		out[i] = Info{Name: s.Name(), Type: s.Type(), Description: s.Description(), Priority: s.Priority()}
	}
	return out
}

// CreateComposite builds a composite strategy out of members.
func (m *Manager) CreateComposite(name string, members ...Strategy) *Composite {
	return NewComposite(name, members...)
}

// ValidateStrategy checks an externally supplied strategy before admission.
func (m *Manager) ValidateStrategy(s Strategy) (v Verdict) {
	if s == nil {
		return Verdict{Errors: []string{"Strategy must not be nil"}}
	}
	defer func() {
		if r := recover(); r != nil {
			v.Errors = append(v.Errors, fmt.Sprintf("Strategy panicked during validation: %v", r))
			v.Valid = false
		}
	}()
	if s.Name() == "" {
		v.Errors = append(v.Errors, "Strategy must have a valid name")
	}
	if !s.Type().Valid() {
		v.Errors = append(v.Errors, "Strategy must have a valid type")
	}
	if s.Description() == "" {
		v.Errors = append(v.Errors, "Strategy must have a description")
	}
	p := s.Priority()
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 || p > 100 {
		v.Errors = append(v.Errors, "Strategy priority must be a number between 0 and 100")
	}
	v.Valid = len(v.Errors) == 0
	return v
}
