package presence

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/presence"
)

var unknownState = presence.PresenceState{Status: presence.StatusUnknown}

// Ledger holds the current presence of every known employee. Each entry is
// an immutable PresenceState swapped atomically, so readers never see a
// partially applied event. The map lock only guards membership.
type Ledger struct {
	mu     sync.RWMutex
	states map[string]*atomic.Pointer[presence.PresenceState]
}

// Placement is an employee together with their current presence.
type Placement struct {
	Employee employee.Employee
	State    presence.PresenceState
}

func NewLedger() *Ledger {
	return &Ledger{
		states: make(map[string]*atomic.Pointer[presence.PresenceState]),
	}
}

func (l *Ledger) slot(employeeID string) *atomic.Pointer[presence.PresenceState] {
	l.mu.RLock()
	p, ok := l.states[employeeID]
	l.mu.RUnlock()
	if ok {
		return p
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok = l.states[employeeID]; ok {
		return p
	}
	p = &atomic.Pointer[presence.PresenceState]{}
	state := unknownState
	p.Store(&state)
	l.states[employeeID] = p
	return p
}

// Track registers employees so they report unknown until their first event.
func (l *Ledger) Track(employeeIDs ...string) {
	for _, id := range employeeIDs {
		l.slot(id)
	}
}

// Apply records event as the latest observation for its employee. The most
// recently applied event wins, even when its timestamp is older than the
// current state.
func (l *Ledger) Apply(event attendance.ClockEvent) presence.PresenceState {
	state := presence.PresenceState{
		Status:        presence.StatusFor(event.Kind),
		LastEventTime: event.Timestamp,
		LastEventKind: event.Kind,
	}
	l.slot(event.EmployeeID).Store(&state)
	return state
}

// Get returns the current state, or unknown for an untracked employee.
func (l *Ledger) Get(employeeID string) (presence.PresenceState, bool) {
	l.mu.RLock()
	p, ok := l.states[employeeID]
	l.mu.RUnlock()
	if !ok {
		return unknownState, false
	}
	return *p.Load(), true
}

// Snapshot returns a point-in-time copy of every state.
func (l *Ledger) Snapshot() map[string]presence.PresenceState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[string]presence.PresenceState, len(l.states))
	for id, p := range l.states {
		snapshot[id] = *p.Load()
	}
	return snapshot
}

// Restore loads previously saved states, replacing any current entry.
func (l *Ledger) Restore(states map[string]presence.PresenceState) {
	for id, state := range states {
		s := state
		l.slot(id).Store(&s)
	}
}

// Partition splits the active employees by presence. Unknown counts as
// outside; inactive employees are left out. Input order is kept.
func (l *Ledger) Partition(employees []employee.Employee) (inside, outside []Placement) {
	inside = []Placement{}
	outside = []Placement{}
	for _, emp := range employees {
		if !emp.Active {
			continue
		}
		state, _ := l.Get(emp.EmployeeID)
		placement := Placement{Employee: emp, State: state}
		if state.Status == presence.StatusInside {
			inside = append(inside, placement)
		} else {
			outside = append(outside, placement)
		}
	}
	return inside, outside
}

func (l *Ledger) InsideList(employees []employee.Employee) []Placement {
	inside, _ := l.Partition(employees)
	return inside
}

func (l *Ledger) OutsideList(employees []employee.Employee) []Placement {
	_, outside := l.Partition(employees)
	return outside
}

// ResetBefore sets every state last observed before cutoff back to unknown
// and returns how many entries changed.
func (l *Ledger) ResetBefore(cutoff time.Time) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	reset := 0
	for _, p := range l.states {
		for {
			current := p.Load()
			if current.Status == presence.StatusUnknown || !current.LastEventTime.Before(cutoff) {
				break
			}
			next := *current
			next.Status = presence.StatusUnknown
			if p.CompareAndSwap(current, &next) {
				reset++
				break
			}
		}
	}
	return reset
}

// NextKind infers the kind of a reading that carries none: the first reading
// of day, or one after a salida, is an entrada; anything else is a salida.
func (l *Ledger) NextKind(employeeID string, day time.Time) attendance.Kind {
	state, _ := l.Get(employeeID)
	if state.Status == presence.StatusUnknown || state.LastEventTime.IsZero() {
		return attendance.KindEntrada
	}
	if !sameDay(state.LastEventTime, day) {
		return attendance.KindEntrada
	}
	return state.LastEventKind.Opposite()
}

// IDs returns the tracked employee ids in ascending order.
func (l *Ledger) IDs() []string {
	l.mu.RLock()
	ids := make([]string, 0, len(l.states))
	for id := range l.states {
		ids = append(ids, id)
	}
	l.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
