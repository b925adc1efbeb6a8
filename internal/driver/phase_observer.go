package driver

import (
	"time"

	"moltree/internal/observ"
)

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	// PhaseStart indicates that a driver phase has begun.
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a timing phase boundary.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase events emitted during Diagnose.
type PhaseObserver func(PhaseEvent)

// phases feeds both the optional timer and the optional observer.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

func (p phases) begin(name string) func(note string) {
	start := time.Now()
	end := p.timer.Track(name)
	if p.observer != nil {
		p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	}
	return func(note string) {
		end(note)
		if p.observer != nil {
			p.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
		}
	}
}
