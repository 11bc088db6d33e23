package perf

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one step of a formatting call.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string

	timing string
}

// Timer splits one call into phases and reports each of them to a Monitor,
// so the shared per-operation counters and the per-call breakdown agree.
// It is not safe for concurrent use.
type Timer struct {
	mon    Monitor
	phases []Phase
}

// NewTimer creates a Timer reporting to m; nil means NoOp.
func NewTimer(m Monitor) *Timer {
	if m == nil {
		m = NoOp{}
	}
	return &Timer{mon: m, phases: make([]Phase, 0, 8)}
}

// Begin starts a phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, timing: t.mon.StartTiming(name)})
	return len(t.phases) - 1
}

// End finishes a phase by its index. A phase ends once.
func (t *Timer) End(idx int, note string) time.Duration {
	if idx < 0 || idx >= len(t.phases) {
		return 0
	}
	p := &t.phases[idx]
	if p.timing != "" {
		p.Dur = t.mon.EndTiming(p.timing)
		p.timing = ""
	}
	p.Note = note
	return p.Dur
}

// Phases returns the finished and running phases in start order.
func (t *Timer) Phases() []Phase {
	out := make([]Phase, len(t.phases))
	copy(out, t.phases)
	return out
}

// Summary рендерит фазы таблицей для --timings.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport: фаза в виде, пригодном для JSON.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report: фазы одного вызова и их сумма.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, 0, len(t.phases))}
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	r.TotalMS = millis(total)
	return r
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
