package board

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Phase is what the save badge shows. It is presentation only; no board
// logic waits on it.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUpdating
	PhaseSaved
	// PhaseReloaded is idle after a failed sync forced a full reload.
	PhaseReloaded
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdating:
		return "updating"
	case PhaseSaved:
		return "saved"
	case PhaseReloaded:
		return "reloaded"
	default:
		return "idle"
	}
}

const (
	DefaultMinUpdating = 800 * time.Millisecond
	DefaultSavedFor    = 2000 * time.Millisecond
)

// Indicator runs idle -> updating -> (saved -> idle | reloaded). Updating is
// held for at least minUpdating; saved lasts savedFor. Only the most recent
// Begin drives transitions.
type Indicator struct {
	mu          sync.Mutex
	clock       clock.Clock
	minUpdating time.Duration
	savedFor    time.Duration

	phase     Phase
	gen       uint64
	startedAt time.Time
	timer     *clock.Timer

	onChange func(Phase)
	changes  uint64

	// deliverMu orders callbacks; delivered is the last change handed out.
	deliverMu sync.Mutex
	delivered uint64
}

// change is a phase transition waiting to be handed to the callback.
type change struct {
	fn    func(Phase)
	phase Phase
	seq   uint64
}

func NewIndicator(c clock.Clock, minUpdating, savedFor time.Duration) *Indicator {
	if c == nil {
		c = clock.New()
	}
	return &Indicator{
		clock:       c,
		minUpdating: minUpdating,
		savedFor:    savedFor,
	}
}

// OnChange registers fn to be called after every phase change. Calls never
// overlap and never go backwards: a change overtaken by a newer one is
// dropped, so fn always ends on the current phase. fn must not call Begin
// or Finish.
func (i *Indicator) OnChange(fn func(Phase)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onChange = fn
}

func (i *Indicator) Phase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.phase
}

// Begin enters updating and returns the generation to pass to Finish.
func (i *Indicator) Begin() uint64 {
	i.mu.Lock()
	i.gen++
	gen := i.gen
	i.stopLocked()
	i.startedAt = i.clock.Now()
	c := i.setLocked(PhaseUpdating)
	i.mu.Unlock()
	i.deliver(c)
	return gen
}

// Finish ends the operation started by Begin(gen). Stale generations are
// ignored because a newer operation owns the badge.
func (i *Indicator) Finish(gen uint64, ok bool) {
	i.mu.Lock()
	if gen != i.gen {
		i.mu.Unlock()
		return
	}
	remaining := i.minUpdating - i.clock.Since(i.startedAt)
	if remaining <= 0 {
		c, settled := i.settleLocked(gen, ok)
		i.mu.Unlock()
		if settled {
			i.deliver(c)
		}
		return
	}
	i.stopLocked()
	i.timer = i.clock.AfterFunc(remaining, func() {
		i.mu.Lock()
		c, settled := i.settleLocked(gen, ok)
		i.mu.Unlock()
		if settled {
			i.deliver(c)
		}
	})
	i.mu.Unlock()
}

// settleLocked leaves updating and, after a save, arms the return to idle.
func (i *Indicator) settleLocked(gen uint64, ok bool) (change, bool) {
	if gen != i.gen {
		return change{}, false
	}
	if !ok {
		return i.setLocked(PhaseReloaded), true
	}
	c := i.setLocked(PhaseSaved)
	i.timer = i.clock.AfterFunc(i.savedFor, func() {
		i.mu.Lock()
		if gen != i.gen || i.phase != PhaseSaved {
			i.mu.Unlock()
			return
		}
		idle := i.setLocked(PhaseIdle)
		i.mu.Unlock()
		i.deliver(idle)
	})
	return c, true
}

func (i *Indicator) setLocked(p Phase) change {
	i.phase = p
	i.changes++
	return change{fn: i.onChange, phase: p, seq: i.changes}
}

func (i *Indicator) stopLocked() {
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

// deliver runs the callback outside i.mu, in change order.
func (i *Indicator) deliver(c change) {
	i.deliverMu.Lock()
	defer i.deliverMu.Unlock()
	if c.seq <= i.delivered {
		return
	}
	i.delivered = c.seq
	if c.fn != nil {
		c.fn(c.phase)
	}
}
