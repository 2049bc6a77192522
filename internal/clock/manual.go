package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when told to. Timers fire
// synchronously inside Advance and Set, in deadline order.
type Manual struct {
	now    time.Time
	timers []*manualTimer
	seq    int
	mu     sync.Mutex
}

type manualTimer struct {
	deadline time.Time
	fn       func()
	owner    *Manual
	seq      int
	stopped  bool
	fired    bool
}

// NewManual creates a manual clock starting at now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTimer{
		deadline: m.now.Add(d),
		fn:       f,
		owner:    m,
		seq:      m.seq,
	}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d and fires every timer that came due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	m.Set(target)
}

// Set moves the clock to t and fires every timer that came due. Timers
// scheduled by a firing callback also fire if they are due by t.
func (m *Manual) Set(t time.Time) {
	for {
		m.mu.Lock()
		next := m.nextDueLocked(t)
		if next == nil {
			m.now = t
			m.mu.Unlock()
			return
		}
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		next.fired = true
		m.removeLocked(next)
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Manual) nextDueLocked(t time.Time) *manualTimer {
	due := make([]*manualTimer, 0, len(m.timers))
	for _, tm := range m.timers {
		if !tm.deadline.After(t) {
			due = append(due, tm)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline.Equal(due[j].deadline) {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline.Before(due[j].deadline)
	})
	return due[0]
}

func (m *Manual) removeLocked(t *manualTimer) {
	for i, tm := range m.timers {
		if tm == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	m.removeLocked(t)
	return true
}
