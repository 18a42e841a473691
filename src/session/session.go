// Package session models one capture attempt from trigger to terminal
// outcome, plus the single-active-session slot that gates new triggers.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"profile-clip/src/match"
	"profile-clip/src/screenshot"
)

// State is a CaptureSession lifecycle state. Transitions are monotonic: a
// state is never revisited, and the last four states are terminal.
type State int

const (
	Selecting State = iota
	Captured
	Recognizing
	Matching
	Resolved
	NoMatch
	Cancelled
	Error
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "Selecting"
	case Captured:
		return "Captured"
	case Recognizing:
		return "Recognizing"
	case Matching:
		return "Matching"
	case Resolved:
		return "Resolved"
	case NoMatch:
		return "NoMatch"
	case Cancelled:
		return "Cancelled"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the session is finished in this state.
func (s State) Terminal() bool {
	switch s {
	case Resolved, NoMatch, Cancelled, Error:
		return true
	}
	return false
}

// transitions lists the legal successor states. Cancel is accepted up to and
// including Recognizing; once Matching (chooser possibly open), a cancel is
// expressed as NoMatch so no ambiguity is left unresolved.
var transitions = map[State][]State{
	Selecting:   {Captured, Cancelled, Error},
	Captured:    {Recognizing, Cancelled, Error},
	Recognizing: {Matching, Cancelled, Error},
	Matching:    {Resolved, NoMatch, Error},
}

var nextID atomic.Uint64

// Session is the unit of work for one recognition attempt. Transitions for
// one session happen sequentially on the event-loop goroutine, but the state
// word is read concurrently by Slot.Acquire, so it is atomic. The remaining
// fields are loop-goroutine only.
type Session struct {
	id         uint64
	state      atomic.Int32
	region     screenshot.Region
	text       string
	candidates []match.Candidate
	createdAt  time.Time
}

func New() *Session {
	s := &Session{
		id:        nextID.Add(1),
		createdAt: time.Now(),
	}
	s.state.Store(int32(Selecting))
	return s
}

func (s *Session) ID() uint64            { return s.id }
func (s *Session) State() State          { return State(s.state.Load()) }
func (s *Session) CreatedAt() time.Time  { return s.createdAt }
func (s *Session) Region() screenshot.Region { return s.region }
func (s *Session) Text() string          { return s.text }

func (s *Session) Candidates() []match.Candidate { return s.candidates }

func (s *Session) SetRegion(r screenshot.Region)        { s.region = r }
func (s *Session) SetText(text string)                  { s.text = text }
func (s *Session) SetCandidates(cs []match.Candidate)   { s.candidates = cs }

// To advances the session. Illegal transitions are programming errors and
// are reported rather than silently applied.
func (s *Session) To(next State) error {
	cur := s.State()
	for _, allowed := range transitions[cur] {
		if allowed == next {
			s.state.Store(int32(next))
			return nil
		}
	}
	return fmt.Errorf("illegal session transition %s -> %s", cur, next)
}

// Slot is the single-active-session gate. Acquire is the atomic
// create-if-absent check the trigger listener funnels through; Release is
// the terminal-state cleanup. A race between a new activation and a
// terminating session can never leave two sessions non-terminal.
type Slot struct {
	mu     sync.Mutex
	active *Session
}

// Acquire creates and installs a new session if none is active. It returns
// (nil, false) while another session is non-terminal.
func (sl *Slot) Acquire() (*Session, bool) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.active != nil && !sl.active.State().Terminal() {
		return nil, false
	}
	sess := New()
	sl.active = sess
	return sess, true
}

// Release clears the slot if sess is the occupant. Releasing a stale session
// is a no-op.
func (sl *Slot) Release(sess *Session) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.active == sess {
		sl.active = nil
	}
}

// Active returns the current occupant, or nil.
func (sl *Slot) Active() *Session {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.active
}
