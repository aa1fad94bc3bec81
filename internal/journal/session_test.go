package journal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evensen/daybook/internal/store"
)

// manualScheduler records scheduled tasks instead of arming real timers, so
// tests fire the debounce and inactivity callbacks by hand.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	run       func()
	cancelled bool
}

func (s *manualScheduler) Schedule(d time.Duration, task func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	mt := &manualTask{delay: d, run: task}
	s.tasks = append(s.tasks, mt)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		mt.cancelled = true
	}
}

// fire runs the most recently scheduled live task with the given delay.
func (s *manualScheduler) fire(t *testing.T, d time.Duration) {
	t.Helper()
	s.mu.Lock()
	var target *manualTask
	for _, mt := range s.tasks {
		if mt.delay == d && !mt.cancelled {
			target = mt
		}
	}
	if target != nil {
		target.cancelled = true
	}
	s.mu.Unlock()
	if target == nil {
		t.Fatalf("no live task scheduled for %s", d)
	}
	target.run()
}

func (s *manualScheduler) liveCount(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, mt := range s.tasks {
		if mt.delay == d && !mt.cancelled {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// flakyStore fails writes on demand while reads pass through.
type flakyStore struct {
	store.DocumentStore
	mu        sync.Mutex
	failWrite bool
}

func (f *flakyStore) setFailWrite(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = v
}

func (f *flakyStore) Write(ctx context.Context, name, content string) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return store.ErrWriteRejected
	}
	return f.DocumentStore.Write(ctx, name, content)
}

func newTestSession(t *testing.T, st store.DocumentStore, at time.Time) (*Session, *manualScheduler, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: at}
	m := NewMerger(st, nil)
	m.now = clk.Now
	sched := &manualScheduler{}
	s := NewSession(context.Background(), m, Options{
		DebounceDelay: time.Second,
		CommitDelay:   30 * time.Minute,
		Scheduler:     sched,
		Clock:         clk.Now,
	})
	t.Cleanup(s.Close)
	if _, err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, sched, clk
}

func nextEvent(t *testing.T, s *Session) Event {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	default:
		t.Fatal("no event pending")
	}
	return Event{}
}

func noEvent(t *testing.T, s *Session) {
	t.Helper()
	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event: %#v", ev)
	default:
	}
}

func TestSessionAutosavesAfterDebounce(t *testing.T) {
	mem := store.NewMemory()
	s, sched, _ := newTestSession(t, mem, clockAt(14, 5))

	s.Edit("Hello")
	noEvent(t, s)
	sched.fire(t, time.Second)

	ev := nextEvent(t, s)
	if ev.Kind != EventSaved || ev.Mode != SaveReplaced {
		t.Fatalf("event = %#v, want EventSaved/SaveReplaced", ev)
	}
	if ev.Message != "Saved" {
		t.Fatalf("Message = %q, want %q", ev.Message, "Saved")
	}
	if got := mustRead(t, mem, "2024-03.md"); got != "## 2024-03-15\nHello\n" {
		t.Fatalf("document = %q", got)
	}
}

func TestSessionCoalescesRapidEditsIntoOneSave(t *testing.T) {
	mem := store.NewMemory()
	s, sched, _ := newTestSession(t, mem, clockAt(14, 5))

	s.Edit("H")
	s.Edit("He")
	s.Edit("Hello")
	if n := sched.liveCount(time.Second); n != 1 {
		t.Fatalf("live debounce tasks = %d, want 1", n)
	}

	sched.fire(t, time.Second)
	if ev := nextEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved", ev)
	}
	noEvent(t, s)

	entry, _ := ParseDay(mustRead(t, mem, "2024-03.md"), day(2024, time.March, 15))
	if entry.Body != "Hello" {
		t.Fatalf("body = %q, want the final edit only", entry.Body)
	}
}

func TestSessionIdleCommitSealsTextAndNextEditAppends(t *testing.T) {
	mem := store.NewMemory()
	s, sched, clk := newTestSession(t, mem, clockAt(14, 5))

	s.Edit("Hello")
	sched.fire(t, time.Second)
	if ev := nextEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved", ev)
	}

	sched.fire(t, 30*time.Minute)
	ev := nextEvent(t, s)
	if ev.Kind != EventCommitted {
		t.Fatalf("event = %#v, want EventCommitted", ev)
	}
	if len(ev.Committed) != 1 || ev.Committed[0].Text != "Hello" {
		t.Fatalf("Committed = %#v, want the sealed text", ev.Committed)
	}
	// Sealing is an editor-side transition; the file is untouched.
	if got := mustRead(t, mem, "2024-03.md"); got != "## 2024-03-15\nHello\n" {
		t.Fatalf("document changed on commit: %q", got)
	}

	clk.Set(clockAt(14, 40))
	s.Edit("World")
	sched.fire(t, time.Second)
	ev = nextEvent(t, s)
	if ev.Kind != EventSaved || ev.Mode != SaveNewSession {
		t.Fatalf("event = %#v, want EventSaved/SaveNewSession", ev)
	}

	entry, _ := ParseDay(mustRead(t, mem, "2024-03.md"), day(2024, time.March, 15))
	want := "Hello\n\n*14:40*\nWorld"
	if entry.Body != want {
		t.Fatalf("body = %q, want %q", entry.Body, want)
	}
}

func TestSessionIdleCommitWithNothingLiveIsSilent(t *testing.T) {
	mem := store.NewMemory()
	s, sched, _ := newTestSession(t, mem, clockAt(14, 5))

	s.Edit("   ")
	sched.fire(t, 30*time.Minute)
	noEvent(t, s)
}

func TestSessionMergesExternalChangeInsteadOfOverwriting(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	if err := mem.Write(ctx, "2024-03.md", "## 2024-03-15\nMine\n"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, sched, _ := newTestSession(t, mem, clockAt(14, 5))

	// Another device touches the file while we edit.
	if err := mem.Write(ctx, "2024-03.md", "## 2024-03-15\nTheirs\n"); err != nil {
		t.Fatalf("external write: %v", err)
	}

	s.Edit("Mine, continued")
	sched.fire(t, time.Second)

	ev := nextEvent(t, s)
	if ev.Kind != EventSaved || ev.Mode != SaveMergedExternal {
		t.Fatalf("event = %#v, want EventSaved/SaveMergedExternal", ev)
	}

	entry, _ := ParseDay(mustRead(t, mem, "2024-03.md"), day(2024, time.March, 15))
	if !strings.HasPrefix(entry.Body, "Theirs\n\n*14:05*\n") {
		t.Fatalf("body = %q, external text was lost", entry.Body)
	}
}

func TestSessionRollsOverAtMidnight(t *testing.T) {
	mem := store.NewMemory()
	s, sched, clk := newTestSession(t, mem, time.Date(2024, time.March, 15, 23, 50, 0, 0, time.Local))

	s.Edit("Late night")
	sched.fire(t, time.Second)
	if ev := nextEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved", ev)
	}

	clk.Set(time.Date(2024, time.March, 16, 0, 1, 0, 0, time.Local))
	s.Edit("Late night, one more thought")
	sched.fire(t, time.Second)

	ev := nextEvent(t, s)
	if ev.Kind != EventRolledOver {
		t.Fatalf("event = %#v, want EventRolledOver", ev)
	}
	if !SameDay(ev.Date, day(2024, time.March, 16)) {
		t.Fatalf("rollover date = %s, want 2024-03-16", ev.Date)
	}

	// The pending text was archived under yesterday with its own stamp.
	old, ok := ParseDay(mustRead(t, mem, "2024-03.md"), day(2024, time.March, 15))
	if !ok {
		t.Fatal("yesterday's entry missing after rollover")
	}
	want := "Late night\n\n*00:01*\nLate night, one more thought"
	if old.Body != want {
		t.Fatalf("archived body = %q, want %q", old.Body, want)
	}

	// Fresh edits land under the new date, at the top of the month file.
	s.Edit("Morning")
	sched.fire(t, time.Second)
	if ev := nextEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved", ev)
	}
	content := mustRead(t, mem, "2024-03.md")
	if !strings.HasPrefix(content, "## 2024-03-16\nMorning\n") {
		t.Fatalf("new day not at top of month file: %q", content)
	}
}

func TestSessionKeepsTextWhenSaveFailsAndRetries(t *testing.T) {
	flaky := &flakyStore{DocumentStore: store.NewMemory()}
	s, sched, _ := newTestSession(t, flaky, clockAt(14, 5))

	flaky.setFailWrite(true)
	s.Edit("Hello")
	sched.fire(t, time.Second)

	ev := nextEvent(t, s)
	if ev.Kind != EventSaveFailed {
		t.Fatalf("event = %#v, want EventSaveFailed", ev)
	}
	if !errors.Is(ev.Err, store.ErrWriteRejected) {
		t.Fatalf("Err = %v, want ErrWriteRejected", ev.Err)
	}

	flaky.setFailWrite(false)
	s.Edit("Hello")
	sched.fire(t, time.Second)

	ev = nextEvent(t, s)
	if ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved after the store recovers", ev)
	}
	if got := mustRead(t, flaky, "2024-03.md"); got != "## 2024-03-15\nHello\n" {
		t.Fatalf("document = %q", got)
	}
}

func TestSessionFlushSavesImmediately(t *testing.T) {
	mem := store.NewMemory()
	s, sched, _ := newTestSession(t, mem, clockAt(14, 5))

	s.Edit("Hello")
	s.Flush()

	if ev := nextEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved", ev)
	}
	if n := sched.liveCount(time.Second); n != 0 {
		t.Fatalf("live debounce tasks after Flush = %d, want 0", n)
	}
	if got := mustRead(t, mem, "2024-03.md"); got != "## 2024-03-15\nHello\n" {
		t.Fatalf("document = %q", got)
	}
}

func TestSessionTitleEditsShareTheAutosave(t *testing.T) {
	mem := store.NewMemory()
	s, sched, _ := newTestSession(t, mem, clockAt(14, 5))

	s.Edit("Hello")
	s.EditTitle("Trip")
	sched.fire(t, time.Second)
	if ev := nextEvent(t, s); ev.Kind != EventSaved {
		t.Fatalf("event = %#v, want EventSaved", ev)
	}

	if got := mustRead(t, mem, "2024-03.md"); got != "## 2024-03-15 - Trip\nHello\n" {
		t.Fatalf("document = %q", got)
	}
}

func TestSessionCloseClosesTheEventStream(t *testing.T) {
	mem := store.NewMemory()
	s, _, _ := newTestSession(t, mem, clockAt(14, 5))

	s.Close()
	if _, ok := <-s.Events(); ok {
		t.Fatal("event channel still open after Close")
	}
	// Close is idempotent; the cleanup call must not panic.
	s.Close()
}
