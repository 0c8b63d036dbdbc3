package timer

import (
	"testing"
	"time"

	"github.com/sadopc/studyflow/internal/store"
)

// fakeClock lets tests move time by hand.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMachine(cfg Config) (*Machine, *fakeClock) {
	clock := newFakeClock()
	return New(cfg, clock.Now), clock
}

// ============================================================
// Start / Pause / Stop
// ============================================================

func TestStartRequiresSubject(t *testing.T) {
	m, _ := newTestMachine(DefaultConfig())

	if err := m.Start("", ""); err != ErrEmptySubject {
		t.Fatalf("err = %v, want ErrEmptySubject", err)
	}
	if err := m.Start("   ", ""); err != ErrEmptySubject {
		t.Fatalf("whitespace subject: err = %v, want ErrEmptySubject", err)
	}
	if m.State() != StateIdle {
		t.Fatal("failed start should leave the machine idle")
	}

	if err := m.Start("Math", ""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if m.State() != StateRunning {
		t.Fatalf("state = %v, want running", m.State())
	}
	if err := m.Start("Math", ""); err != ErrNotIdle {
		t.Fatalf("second start: err = %v, want ErrNotIdle", err)
	}
}

func TestPauseExcludedFromElapsed(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	clock.Advance(10 * time.Minute)
	m.Pause()
	clock.Advance(30 * time.Minute) // paused time must not count
	m.Resume()
	clock.Advance(5 * time.Minute)

	if got := m.Elapsed(); got != 15*time.Minute {
		t.Fatalf("Elapsed = %v, want 15m", got)
	}
	if got := m.Remaining(); got != 10*time.Minute {
		t.Fatalf("Remaining = %v, want 10m", got)
	}
}

func TestStopMidFocusRecordsInterrupted(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	if err := m.Start("Math", "task-1"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(10*time.Minute + 30*time.Second)

	sess := m.Stop()
	if sess == nil {
		t.Fatal("expected a session record")
	}
	if sess.Duration != 10 {
		t.Fatalf("Duration = %d, want 10 (whole minutes only)", sess.Duration)
	}
	if sess.Completed {
		t.Fatal("manual stop must record an interrupted session")
	}
	if sess.TaskID == nil || *sess.TaskID != "task-1" {
		t.Fatalf("TaskID = %v, want task-1", sess.TaskID)
	}
	if m.State() != StateIdle || m.Phase() != PhaseFocus {
		t.Fatalf("machine not reset: state=%v phase=%v", m.State(), m.Phase())
	}
}

func TestStopUnderOneMinuteRecordsNothing(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}
	clock.Advance(45 * time.Second)

	if sess := m.Stop(); sess != nil {
		t.Fatalf("45s session should be discarded, got %+v", sess)
	}
}

func TestStopWhileIdle(t *testing.T) {
	m, _ := newTestMachine(DefaultConfig())
	if sess := m.Stop(); sess != nil {
		t.Fatalf("idle stop should be a no-op, got %+v", sess)
	}
}

func TestStopWhileAwaitingBreakAbandonsCycle(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	// Without auto-continue the machine parks idle at the break phase.
	clock.Advance(DefaultConfig().FocusDuration)
	c := m.Tick()
	if c == nil || c.State != StateIdle || c.Phase != PhaseBreak {
		t.Fatalf("expected idle break after focus expiry, got %+v", c)
	}
	if m.CompletedFocus() != 1 {
		t.Fatalf("CompletedFocus = %d, want 1", m.CompletedFocus())
	}

	if sess := m.Stop(); sess != nil {
		t.Fatalf("stopping a pending break must not record a session, got %+v", sess)
	}
	if m.Phase() != PhaseFocus {
		t.Fatalf("phase = %v, want focus after abandoning the cycle", m.Phase())
	}
	if m.CompletedFocus() != 0 {
		t.Fatal("abandoning the cycle should reset the focus count")
	}
	if err := m.Start("Physics", ""); err != nil {
		t.Fatalf("fresh start after abandon: %v", err)
	}
	if m.Phase() != PhaseFocus || m.State() != StateRunning {
		t.Fatalf("fresh start should run a focus phase, got state=%v phase=%v", m.State(), m.Phase())
	}
}

// ============================================================
// Pomodoro cycle
// ============================================================

func TestPomodoroFocusExpiry(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	clock.Advance(20 * time.Minute)
	if c := m.Tick(); c != nil {
		t.Fatalf("tick before expiry should be nil, got %+v", c)
	}

	clock.Advance(5 * time.Minute)
	c := m.Tick()
	if c == nil {
		t.Fatal("tick at expiry should complete the phase")
	}
	if c.Session == nil {
		t.Fatal("focus completion must carry a session")
	}
	if c.Session.Duration != 25 || !c.Session.Completed {
		t.Fatalf("session = %+v, want 25 completed minutes", c.Session)
	}
	if c.Phase != PhaseBreak {
		t.Fatalf("phase = %v, want break", c.Phase)
	}
	if c.State != StateIdle {
		t.Fatalf("state = %v, want idle without auto-continue", c.State)
	}
	if m.CompletedFocus() != 1 {
		t.Fatalf("CompletedFocus = %d, want 1", m.CompletedFocus())
	}
}

func TestPomodoroLongBreakEveryNth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoContinue = true
	m, clock := newTestMachine(cfg)
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	// Run three full focus+break rounds, then the fourth focus.
	for i := 0; i < 3; i++ {
		clock.Advance(cfg.FocusDuration)
		c := m.Tick()
		if c == nil || c.Phase != PhaseBreak {
			t.Fatalf("round %d: expected short break, got %+v", i+1, c)
		}
		clock.Advance(cfg.BreakDuration)
		if c := m.Tick(); c == nil || c.Phase != PhaseFocus {
			t.Fatalf("round %d: expected return to focus, got %+v", i+1, c)
		}
	}

	clock.Advance(cfg.FocusDuration)
	c := m.Tick()
	if c == nil || c.Phase != PhaseLongBreak {
		t.Fatalf("fourth focus should end in a long break, got %+v", c)
	}
	if c.Session == nil || !c.Session.Completed {
		t.Fatal("fourth focus must still record a completed session")
	}
}

func TestBreakExpiryRecordsNoSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoContinue = true
	m, clock := newTestMachine(cfg)
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	clock.Advance(cfg.FocusDuration)
	if c := m.Tick(); c == nil || c.Session == nil {
		t.Fatal("focus expiry should record a session")
	}

	clock.Advance(cfg.BreakDuration)
	c := m.Tick()
	if c == nil {
		t.Fatal("break should expire")
	}
	if c.Session != nil {
		t.Fatalf("break expiry must not record a session, got %+v", c.Session)
	}
	if c.Phase != PhaseFocus {
		t.Fatalf("phase = %v, want focus after break", c.Phase)
	}
}

func TestStopDuringBreakRecordsNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoContinue = true
	m, clock := newTestMachine(cfg)
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	clock.Advance(cfg.FocusDuration)
	m.Tick()
	clock.Advance(2 * time.Minute) // mid-break

	if sess := m.Stop(); sess != nil {
		t.Fatalf("stopping during a break must not record a session, got %+v", sess)
	}
	if m.CompletedFocus() != 0 {
		t.Fatal("stop should reset the cycle")
	}
}

func TestDistractionsResetPerFocus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoContinue = true
	m, clock := newTestMachine(cfg)
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}

	m.AddDistraction()
	m.AddDistraction()
	clock.Advance(cfg.FocusDuration)
	c := m.Tick()
	if c.Session.Distractions != 2 {
		t.Fatalf("Distractions = %d, want 2", c.Session.Distractions)
	}
	if m.Distractions() != 0 {
		t.Fatal("distraction count should reset after the focus phase")
	}
}

func TestSkipAdvancesWithoutSession(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Minute)

	m.Skip()
	if m.Phase() != PhaseBreak {
		t.Fatalf("phase = %v, want break after skipping focus", m.Phase())
	}
	if m.CompletedFocus() != 0 {
		t.Fatal("skipped focus must not count toward the long-break cycle")
	}
	if m.State() != StateRunning {
		t.Fatalf("state = %v, want running", m.State())
	}

	m.Skip()
	if m.Phase() != PhaseFocus {
		t.Fatalf("phase = %v, want focus after skipping break", m.Phase())
	}
}

func TestSkipOnlyForPomodoro(t *testing.T) {
	m, _ := newTestMachine(DefaultConfig())
	m.SetTechnique(store.TechniqueFlowtime)
	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}
	m.Skip()
	if m.Phase() != PhaseFocus {
		t.Fatal("skip should be a no-op outside pomodoro")
	}
}

// ============================================================
// Non-cyclic techniques
// ============================================================

func TestFlowtimeCompletionGoesIdle(t *testing.T) {
	m, clock := newTestMachine(DefaultConfig())
	m.SetTechnique(store.TechniqueFlowtime)
	if err := m.Start("Physics", ""); err != nil {
		t.Fatal(err)
	}

	clock.Advance(90 * time.Minute)
	c := m.Tick()
	if c == nil || c.Session == nil {
		t.Fatal("flowtime expiry should record a session")
	}
	if c.Session.Duration != 90 || !c.Session.Completed {
		t.Fatalf("session = %+v, want 90 completed minutes", c.Session)
	}
	if c.State != StateIdle || c.Phase != PhaseFocus {
		t.Fatalf("non-cyclic completion should go idle, got state=%v phase=%v", c.State, c.Phase)
	}
	if c.Event.Kind != "session-complete" {
		t.Fatalf("event = %q, want session-complete", c.Event.Kind)
	}
}

func TestSetDurationWhileIdleOnly(t *testing.T) {
	m, _ := newTestMachine(DefaultConfig())
	m.SetTechnique(store.TechniqueTimeblock)
	m.SetDuration(45 * time.Minute)
	if m.Duration() != 45*time.Minute {
		t.Fatalf("Duration = %v, want 45m", m.Duration())
	}

	if err := m.Start("Math", ""); err != nil {
		t.Fatal(err)
	}
	m.SetDuration(10 * time.Minute)
	if m.Duration() != 45*time.Minute {
		t.Fatal("SetDuration must be ignored while running")
	}
	m.SetTechnique(store.TechniquePomodoro)
	if m.Technique() != store.TechniqueTimeblock {
		t.Fatal("SetTechnique must be ignored while running")
	}
}

func TestFocusRatingBounds(t *testing.T) {
	m, _ := newTestMachine(DefaultConfig())
	if m.FocusRating() != 4 {
		t.Fatalf("default rating = %d, want 4", m.FocusRating())
	}
	m.SetFocusRating(0)
	m.SetFocusRating(6)
	if m.FocusRating() != 4 {
		t.Fatal("out-of-range ratings must be ignored")
	}
	m.SetFocusRating(2)
	if m.FocusRating() != 2 {
		t.Fatalf("rating = %d, want 2", m.FocusRating())
	}
}
