package journal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/evensen/daybook/internal/logger"
)

const (
	// DefaultDebounceDelay is how long after the last keystroke an autosave
	// fires.
	DefaultDebounceDelay = time.Second
	// DefaultCommitDelay is the inactivity window after which the current
	// session is sealed into history.
	DefaultCommitDelay = 30 * time.Minute
)

// EventKind tags the notifications a Session emits toward the UI.
type EventKind int

const (
	// EventSaved follows a successful autosave.
	EventSaved EventKind = iota
	// EventCommitted means the live text was sealed after inactivity; the
	// editor should clear and show it among the committed sections.
	EventCommitted
	// EventRolledOver means the clock crossed midnight: the old entry was
	// archived and a fresh day began.
	EventRolledOver
	// EventSaveFailed reports a save that did not reach the store. The live
	// text is kept; the next edit retries.
	EventSaveFailed
)

// Event is one UI-facing notification.
type Event struct {
	Kind      EventKind
	Mode      SaveMode
	Message   string
	Date      time.Time
	Committed []Section
	Live      Live
	Err       error
}

// View is what the editor shows for the open day.
type View struct {
	Date      time.Time
	Title     string
	Committed []Section
	Live      Live
}

// Options tune a Session; zero values take defaults. Scheduler and Clock are
// swappable so tests can drive time by hand.
type Options struct {
	DebounceDelay time.Duration
	CommitDelay   time.Duration
	Scheduler     Scheduler
	Clock         func() time.Time
	Log           logger.Logger
}

// Session owns the editing state for one open day: the baseline snapshot,
// the live text, the committed flag, and the two timers. All saves for the
// day funnel through it, one at a time.
type Session struct {
	merger *Merger
	sched  Scheduler
	now    func() time.Time
	log    logger.Logger

	debounceDelay time.Duration
	commitDelay   time.Duration

	mu             sync.Mutex
	ctx            context.Context
	date           time.Time
	baseline       Baseline
	title          string
	live           string
	dirty          bool
	committed      bool
	closed         bool
	cancelDebounce func()
	cancelIdle     func()
	events         chan Event
}

// NewSession builds a session controller around the merge engine. Load must
// be called before edits arrive.
func NewSession(ctx context.Context, merger *Merger, opts Options) *Session {
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = DefaultDebounceDelay
	}
	if opts.CommitDelay <= 0 {
		opts.CommitDelay = DefaultCommitDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewScheduler()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}

	return &Session{
		merger:        merger,
		sched:         opts.Scheduler,
		now:           opts.Clock,
		log:           opts.Log,
		debounceDelay: opts.DebounceDelay,
		commitDelay:   opts.CommitDelay,
		ctx:           ctx,
		events:        make(chan Event, 16),
	}
}

// Events exposes the notification stream. The channel closes with the
// session.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Load reads today's entry and seeds the session state.
func (s *Session) Load() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.date = DateOnly(s.now())
	res, err := s.merger.Load(s.ctx, s.date)
	if err != nil {
		return View{}, err
	}

	s.baseline = res.Baseline
	s.title = res.Title
	s.live = res.Live.Text
	s.dirty = false
	s.committed = false

	return View{
		Date:      s.date,
		Title:     res.Title,
		Committed: res.Committed,
		Live:      res.Live,
	}, nil
}

// Edit records the editor's current body text and re-arms both timers.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.live = text
	s.dirty = true
	s.armTimersLocked()
}

// EditTitle records a title change; it participates in the same debounced
// autosave as body edits.
func (s *Session) EditTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.title = title
	s.dirty = true
	s.armTimersLocked()
}

// Flush saves any pending edits immediately. Used on editor teardown.
func (s *Session) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopTimersLocked()
	s.saveLocked()
}

// Close cancels the timers and closes the event stream. No save is issued;
// call Flush first if edits may be pending.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopTimersLocked()
	s.closed = true
	close(s.events)
}

func (s *Session) armTimersLocked() {
	s.stopTimersLocked()
	s.cancelDebounce = s.sched.Schedule(s.debounceDelay, s.autosave)
	s.cancelIdle = s.sched.Schedule(s.commitDelay, s.idleCommit)
}

func (s *Session) stopTimersLocked() {
	if s.cancelDebounce != nil {
		s.cancelDebounce()
		s.cancelDebounce = nil
	}
	if s.cancelIdle != nil {
		s.cancelIdle()
		s.cancelIdle = nil
	}
}

func (s *Session) autosave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.saveLocked()
}

// idleCommit seals the current session: pending edits are flushed, then the
// live text becomes part of history and the editor is cleared. The next edit
// will append under a fresh timestamp.
func (s *Session) idleCommit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.saveLocked()

	if s.committed || strings.TrimSpace(s.live) == "" {
		return
	}
	s.committed = true

	committed, live := Split(s.baseline.Content)
	if live.Text != "" {
		committed = append(committed, Section(live))
	}
	s.live = ""
	s.dirty = false

	s.emitLocked(Event{
		Kind:      EventCommitted,
		Message:   "Session committed after inactivity",
		Date:      s.date,
		Committed: committed,
	})
}

// saveLocked is the single save path. It handles the day-boundary check
// first, then delegates the append-or-replace decision to the merge engine.
// The mutex stays held across the store round trip, so saves never overlap.
func (s *Session) saveLocked() {
	now := s.now()
	if !SameDay(now, s.date) {
		s.rolloverLocked(now)
		return
	}
	if !s.dirty {
		return
	}

	res, err := s.merger.Save(s.ctx, SaveRequest{
		Date:        s.date,
		Baseline:    s.baseline,
		Title:       s.title,
		Text:        s.live,
		ForceAppend: s.committed,
	})
	if err != nil {
		s.log.Error("autosave failed", logger.Error(err))
		s.emitLocked(Event{Kind: EventSaveFailed, Date: s.date, Err: err})
		return
	}
	if res.Mode == SaveSkipped {
		s.dirty = false
		return
	}

	s.baseline = res.Baseline
	s.dirty = false
	s.committed = false

	s.emitLocked(Event{
		Kind:      EventSaved,
		Mode:      res.Mode,
		Message:   res.Mode.Message(),
		Date:      s.date,
		Committed: res.Committed,
		Live:      res.Live,
	})
}

// rolloverLocked archives the pending text under the old date, then starts a
// fresh session for the new one. A failing archive write is reported but
// never blocks the new day.
func (s *Session) rolloverLocked(now time.Time) {
	if strings.TrimSpace(s.live) != "" {
		_, err := s.merger.Save(s.ctx, SaveRequest{
			Date:        s.date,
			Baseline:    s.baseline,
			Title:       s.title,
			Text:        s.live,
			ForceAppend: true,
		})
		if err != nil {
			s.log.Error("day-boundary archive failed",
				logger.String("date", s.date.Format("2006-01-02")),
				logger.Error(err),
			)
			s.emitLocked(Event{Kind: EventSaveFailed, Date: s.date, Err: err})
		}
	}

	s.date = DateOnly(now)
	s.title = ""
	s.live = ""
	s.dirty = false
	s.committed = false
	s.baseline = Baseline{}

	res, err := s.merger.Load(s.ctx, s.date)
	if err != nil {
		s.log.Error("load after day rollover failed", logger.Error(err))
	} else {
		s.baseline = res.Baseline
		s.title = res.Title
		s.live = res.Live.Text
	}

	s.emitLocked(Event{
		Kind:      EventRolledOver,
		Message:   "New day started; previous entry archived",
		Date:      s.date,
		Committed: res.Committed,
		Live:      res.Live,
	})
}

func (s *Session) emitLocked(ev Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.log.Warn("dropping session event", logger.Int("kind", int(ev.Kind)))
	}
}
