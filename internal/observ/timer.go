// Package observ measures driver phases for the --timings report.
package observ

import (
	"sync"
	"time"
)

// Timer collects phases in start order. A nil *Timer is valid and records
// nothing, so callers do not branch on whether timings are enabled.
type Timer struct {
	mu     sync.Mutex
	phases []PhaseReport
	starts []time.Time
	total  time.Duration
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{} }

// Track starts the phase name and returns the function that ends it. The
// note passed to that function is kept with the phase. Ending a phase twice
// keeps the first measurement.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, PhaseReport{Name: name})
	t.starts = append(t.starts, time.Now())
	t.mu.Unlock()

	var once sync.Once
	return func(note string) {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			d := time.Since(t.starts[idx])
			t.phases[idx].DurationMS = millis(d)
			t.phases[idx].Note = note
			t.total += d
		})
	}
}

// PhaseReport — сжатая информация о фазе для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns a copy of the phases and the sum of the finished ones.
// Phases still running report zero.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	return Report{
		TotalMS: millis(t.total),
		Phases:  append([]PhaseReport(nil), t.phases...),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
