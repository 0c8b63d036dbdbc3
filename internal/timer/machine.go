// Package timer implements the countdown state machine behind the study
// timer: a single active session cycling through pomodoro phases, or a
// one-shot countdown for the other techniques.
package timer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

var (
	ErrEmptySubject = errors.New("subject is empty")
	ErrNotIdle      = errors.New("timer is already running")
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
)

type Phase int

const (
	PhaseFocus Phase = iota
	PhaseBreak
	PhaseLongBreak
)

var phaseNames = map[Phase]string{
	PhaseFocus:     "FOCUS",
	PhaseBreak:     "BREAK",
	PhaseLongBreak: "LONG BREAK",
}

func (p Phase) String() string { return phaseNames[p] }

// Config carries the pomodoro cycle settings. AutoContinue controls
// whether a finished phase rolls straight into the next one or waits
// for a manual start.
type Config struct {
	FocusDuration          time.Duration
	BreakDuration          time.Duration
	LongBreakDuration      time.Duration
	SessionsUntilLongBreak int
	AutoContinue           bool
}

func DefaultConfig() Config {
	return Config{
		FocusDuration:          25 * time.Minute,
		BreakDuration:          5 * time.Minute,
		LongBreakDuration:      15 * time.Minute,
		SessionsUntilLongBreak: 4,
	}
}

// Event is a user-facing notification emitted on phase boundaries. The
// machine only describes it; surfacing is the caller's concern.
type Event struct {
	Kind    string
	Message string
}

// Completion describes a phase boundary: the session to append (nil for
// break phases and skips), the phase and state the machine advanced to,
// and the notification event.
type Completion struct {
	Session *store.StudySession
	Phase   Phase
	State   State
	Event   Event
}

// Machine drives one countdown at a time. All time is read through the
// injected clock so the cycle logic is testable without waiting.
type Machine struct {
	clock func() time.Time
	cfg   Config

	state     State
	phase     Phase
	technique store.Technique
	duration  time.Duration // configured length of the focus phase

	subject      string
	taskID       string
	focusRating  int
	distractions int
	breaksTaken  int

	completedFocus int // focus phases finished since the cycle began

	phaseStart time.Time
	pausedAt   time.Time
	pauseGap   time.Duration
}

func New(cfg Config, clock func() time.Time) *Machine {
	if clock == nil {
		clock = time.Now
	}
	if cfg.SessionsUntilLongBreak <= 0 {
		cfg.SessionsUntilLongBreak = 4
	}
	return &Machine{
		clock:       clock,
		cfg:         cfg,
		technique:   store.TechniquePomodoro,
		duration:    cfg.FocusDuration,
		focusRating: 4,
	}
}

func (m *Machine) State() State               { return m.state }
func (m *Machine) Phase() Phase               { return m.phase }
func (m *Machine) Technique() store.Technique { return m.technique }
func (m *Machine) Subject() string            { return m.subject }
func (m *Machine) Duration() time.Duration    { return m.duration }
func (m *Machine) Distractions() int          { return m.distractions }
func (m *Machine) FocusRating() int           { return m.focusRating }
func (m *Machine) CompletedFocus() int        { return m.completedFocus }
func (m *Machine) Config() Config             { return m.cfg }

// SetTechnique switches the discipline. Only allowed while idle; it
// resets the cycle and the countdown to the technique's default.
func (m *Machine) SetTechnique(t store.Technique) {
	if m.state != StateIdle {
		return
	}
	info, ok := Techniques[t]
	if !ok {
		return
	}
	m.technique = t
	if t == store.TechniquePomodoro {
		m.duration = m.cfg.FocusDuration
	} else {
		m.duration = info.Default
	}
	m.resetCycle()
}

// SetConfig swaps in a new configuration. Only allowed while idle;
// the countdown is reset so the new durations take effect.
func (m *Machine) SetConfig(cfg Config) {
	if m.state != StateIdle {
		return
	}
	m.cfg = cfg
	if m.technique == store.TechniquePomodoro {
		m.duration = cfg.FocusDuration
	}
}

// SetDuration overrides the focus duration while idle.
func (m *Machine) SetDuration(d time.Duration) {
	if m.state != StateIdle || d <= 0 {
		return
	}
	m.duration = d
}

func (m *Machine) SetFocusRating(rating int) {
	if rating >= 1 && rating <= 5 {
		m.focusRating = rating
	}
}

func (m *Machine) AddDistraction() {
	if m.state == StateRunning {
		m.distractions++
	}
}

// Start begins the countdown for the current phase. A blank subject is a
// validation error and leaves the machine idle.
func (m *Machine) Start(subject, taskID string) error {
	if m.state != StateIdle {
		return ErrNotIdle
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return ErrEmptySubject
	}
	m.subject = subject
	m.taskID = taskID
	m.state = StateRunning
	m.phaseStart = m.clock()
	m.pauseGap = 0
	return nil
}

func (m *Machine) Pause() {
	if m.state != StateRunning {
		return
	}
	m.state = StatePaused
	m.pausedAt = m.clock()
}

func (m *Machine) Resume() {
	if m.state != StatePaused {
		return
	}
	m.pauseGap += m.clock().Sub(m.pausedAt)
	m.state = StateRunning
}

// Elapsed returns wall time spent in the current phase, pauses excluded.
func (m *Machine) Elapsed() time.Duration {
	switch m.state {
	case StateRunning:
		return m.clock().Sub(m.phaseStart) - m.pauseGap
	case StatePaused:
		return m.pausedAt.Sub(m.phaseStart) - m.pauseGap
	}
	return 0
}

// Remaining returns the time left in the current phase, clamped at zero.
func (m *Machine) Remaining() time.Duration {
	if m.state == StateIdle {
		return m.phaseDuration()
	}
	r := m.phaseDuration() - m.Elapsed()
	if r < 0 {
		r = 0
	}
	return r
}

func (m *Machine) phaseDuration() time.Duration {
	switch m.phase {
	case PhaseBreak:
		return m.cfg.BreakDuration
	case PhaseLongBreak:
		return m.cfg.LongBreakDuration
	}
	return m.duration
}

// Tick checks the countdown against the clock and completes the phase
// when it has run out. Returns nil while time remains.
func (m *Machine) Tick() *Completion {
	if m.state != StateRunning {
		return nil
	}
	if m.Elapsed() < m.phaseDuration() {
		return nil
	}
	return m.completePhase()
}

func (m *Machine) completePhase() *Completion {
	now := m.clock()

	if m.phase != PhaseFocus {
		// Break finished: no session, back to focus.
		m.breaksTaken++
		m.phase = PhaseFocus
		m.beginPhase(now)
		return &Completion{
			Phase: m.phase,
			State: m.state,
			Event: Event{Kind: "break-over", Message: "Break over! Ready for another focused session?"},
		}
	}

	sess := m.buildSession(now, true)

	if !Techniques[m.technique].Cyclic {
		m.state = StateIdle
		m.resetCycle()
		return &Completion{
			Session: sess,
			Phase:   m.phase,
			State:   m.state,
			Event:   Event{Kind: "session-complete", Message: fmt.Sprintf("Great work on your %s session!", Techniques[m.technique].Name)},
		}
	}

	m.completedFocus++
	if m.completedFocus%m.cfg.SessionsUntilLongBreak == 0 {
		m.phase = PhaseLongBreak
	} else {
		m.phase = PhaseBreak
	}
	m.distractions = 0
	m.beginPhase(now)

	msg := "Pomodoro complete! Time for a break."
	if m.phase == PhaseLongBreak {
		msg = "Pomodoro complete! Take a long break, you earned it."
	}
	return &Completion{
		Session: sess,
		Phase:   m.phase,
		State:   m.state,
		Event:   Event{Kind: "focus-complete", Message: msg},
	}
}

// beginPhase arms the countdown for the current phase, honoring the
// auto-continue policy.
func (m *Machine) beginPhase(now time.Time) {
	m.phaseStart = now
	m.pauseGap = 0
	if m.cfg.AutoContinue {
		m.state = StateRunning
	} else {
		m.state = StateIdle
	}
}

// Stop ends the session manually. If at least one whole minute of focus
// time elapsed, an interrupted session record is returned; otherwise nil.
// The machine resets to an idle focus phase either way. Stopping a
// machine that is parked mid-cycle awaiting a manual phase start (auto-
// continue off) abandons the cycle the same way.
func (m *Machine) Stop() *store.StudySession {
	if m.state == StateIdle {
		if m.phase != PhaseFocus || m.completedFocus > 0 {
			m.phase = PhaseFocus
			m.resetCycle()
		}
		return nil
	}
	now := m.clock()

	var sess *store.StudySession
	if m.phase == PhaseFocus {
		if mins := int(m.Elapsed() / time.Minute); mins > 0 {
			sess = m.buildSession(now, false)
			sess.Duration = mins
		}
	}

	m.state = StateIdle
	m.phase = PhaseFocus
	m.resetCycle()
	return sess
}

// Skip discards the current pomodoro phase and advances to the next one
// without recording a session.
func (m *Machine) Skip() {
	if m.technique != store.TechniquePomodoro || m.state == StateIdle {
		return
	}
	now := m.clock()
	if m.phase == PhaseFocus {
		if m.completedFocus%m.cfg.SessionsUntilLongBreak == m.cfg.SessionsUntilLongBreak-1 {
			m.phase = PhaseLongBreak
		} else {
			m.phase = PhaseBreak
		}
	} else {
		m.phase = PhaseFocus
	}
	m.phaseStart = now
	m.pauseGap = 0
	m.state = StateRunning
}

func (m *Machine) buildSession(now time.Time, completed bool) *store.StudySession {
	duration := int(m.phaseDuration() / time.Minute)
	if !Techniques[m.technique].Cyclic {
		duration = int(m.Elapsed() / time.Minute)
	}
	sess := &store.StudySession{
		Subject:      m.subject,
		Technique:    m.technique,
		Duration:     duration,
		StartTime:    m.phaseStart,
		EndTime:      now,
		FocusRating:  m.focusRating,
		Completed:    completed,
		Breaks:       m.breaksTaken,
		Distractions: m.distractions,
	}
	if m.taskID != "" {
		id := m.taskID
		sess.TaskID = &id
	}
	return sess
}

func (m *Machine) resetCycle() {
	m.completedFocus = 0
	m.breaksTaken = 0
	m.distractions = 0
	m.pauseGap = 0
}
