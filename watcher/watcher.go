// Package watcher periodically checks the access log for dashboard views
// and tells FAHClient to pause or fold accordingly.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/datarhei/foldwatch/accesslog"
	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/log"
	timesrc "github.com/datarhei/foldwatch/time"

	"github.com/lithammer/shortuuid/v4"
)

// ErrBusy is returned by RunOnce if a check is already running.
var ErrBusy = errors.New("a check is already running")

// State is the phase of the current check.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateDeciding
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateDeciding:
		return "deciding"
	case StateSending:
		return "sending"
	}

	return "unknown"
}

// Outcomes of a check
const (
	OutcomeOK        = "ok"
	OutcomeLogError  = "log_error"
	OutcomeSendError = "send_error"
)

// Sender delivers a command to the worker. fah.Client implements it.
type Sender interface {
	Send(ctx context.Context, cmd activity.Command, now time.Time) error
}

// Result describes a finished check.
type Result struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	LastAccess *time.Time       // Last known access after scanning
	Command    activity.Command // Decided command, not valid for OutcomeLogError
	Outcome    string
	Err        error
}

// Stats are the counters of all checks since the watcher has been created.
type Stats struct {
	Cycles   map[string]uint64 // Finished checks by outcome
	Skipped  uint64            // Ticks skipped because a check was still running
	Commands map[string]uint64 // Delivered commands by command
}

type Config struct {
	Scanner   accesslog.Scanner
	Tracker   activity.Tracker // Defaults to a new tracker
	Sender    Sender
	Threshold time.Duration // Max. age of the last access for pausing
	Interval  time.Duration // Time between two checks, defaults to 30s
	Schedule  string        // Cron expression, overrides Interval
	Timeout   time.Duration // Max. duration of a check, defaults to twice the interval
	Clock     timesrc.Source
	Logger    log.Logger
}

type Watcher interface {
	// Start runs a check immediately and then according to the schedule.
	Start()

	// Stop stops the schedule and cancels a running check.
	Stop()

	// RunOnce runs a check now and returns its result. It returns ErrBusy
	// if a check is already running.
	RunOnce(ctx context.Context) (Result, error)

	// State returns the phase of the running check, or StateIdle.
	State() State

	// Last returns the result of the latest finished check.
	Last() (Result, bool)

	// LastAccess returns the last known access to the dashboard.
	LastAccess() *time.Time

	Stats() Stats
}

type watcher struct {
	scanner   accesslog.Scanner
	tracker   activity.Tracker
	sender    Sender
	scheduler Scheduler
	threshold time.Duration
	timeout   time.Duration
	clock     timesrc.Source

	gate chan struct{}
	wg   sync.WaitGroup

	lock    sync.RWMutex
	state   State
	last    *Result
	skipped uint64
	cycles  map[string]uint64
	sent    map[string]uint64

	startOnce sync.Once
	stopOnce  sync.Once
	stopTick  context.CancelFunc

	logger log.Logger
}

func New(config Config) (Watcher, error) {
	w := &watcher{
		scanner:   config.Scanner,
		tracker:   config.Tracker,
		sender:    config.Sender,
		threshold: config.Threshold,
		timeout:   config.Timeout,
		clock:     config.Clock,
		gate:      make(chan struct{}, 1),
		cycles:    map[string]uint64{},
		sent:      map[string]uint64{},
		logger:    config.Logger,
	}

	if w.scanner == nil {
		return nil, fmt.Errorf("no scanner provided")
	}

	if w.sender == nil {
		return nil, fmt.Errorf("no sender provided")
	}

	if w.threshold <= 0 {
		return nil, fmt.Errorf("the threshold must be greater than 0")
	}

	if w.tracker == nil {
		w.tracker = activity.NewTracker()
	}

	if w.clock == nil {
		w.clock = &timesrc.StdSource{}
	}

	if w.logger == nil {
		w.logger = log.New("")
	}

	interval := config.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	if w.timeout <= 0 {
		w.timeout = 2 * interval
	}

	var err error

	if len(config.Schedule) != 0 {
		w.scheduler, err = NewCronScheduler(config.Schedule)
	} else {
		w.scheduler, err = NewIntervalScheduler(interval)
	}

	if err != nil {
		return nil, err
	}

	// drain stop once, so it can't be called before startOnce has been called
	w.stopOnce.Do(func() {})

	return w, nil
}

func (w *watcher) Start() {
	w.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		w.stopTick = cancel

		w.wg.Add(1)
		go w.tick(ctx)

		w.stopOnce = sync.Once{}
	})
}

func (w *watcher) Stop() {
	w.stopOnce.Do(func() {
		w.stopTick()
		w.wg.Wait()

		w.startOnce = sync.Once{}
	})
}

func (w *watcher) tick(ctx context.Context) {
	defer w.wg.Done()

	w.trigger(ctx)

	for {
		d, err := w.scheduler.NextAfter(time.Now())
		if err != nil {
			w.logger.Error().WithError(err).Log("Stopping checks")
			return
		}

		timer := time.NewTimer(d)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			w.trigger(ctx)
		}
	}
}

// trigger starts a check in the background unless one is still running.
func (w *watcher) trigger(ctx context.Context) {
	select {
	case w.gate <- struct{}{}:
	default:
		w.lock.Lock()
		w.skipped++
		w.lock.Unlock()

		w.logger.Warn().Log("Skipping check, the previous one is still running")
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.gate }()

		w.cycle(ctx)
	}()
}

func (w *watcher) RunOnce(ctx context.Context) (Result, error) {
	select {
	case w.gate <- struct{}{}:
	default:
		return Result{}, ErrBusy
	}

	defer func() { <-w.gate }()

	return w.cycle(ctx), nil
}

func (w *watcher) cycle(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	r := Result{
		ID:        shortuuid.New(),
		StartedAt: w.clock.Now(),
	}

	logger := w.logger.WithField("cycle", r.ID)

	defer w.setState(StateIdle)

	w.setState(StateScanning)

	t, err := w.scanner.Scan(ctx)
	if err == nil {
		w.tracker.Observe(t)
		logger.Debug().WithField("access", t).Log("Found dashboard access")
	} else if errors.Is(err, accesslog.ErrNoMatch) {
		logger.Debug().Log("No dashboard access in the access log")
	} else {
		logger.Error().WithError(err).Log("Reading the access log failed")

		r.Outcome = OutcomeLogError
		r.Err = err
		r.LastAccess = w.tracker.Last()

		return w.finish(r)
	}

	w.setState(StateDeciding)

	now := w.clock.Now()

	r.LastAccess = w.tracker.Last()
	r.Command = activity.Decide(now, r.LastAccess, w.threshold)

	logger = logger.WithField("command", r.Command.String())

	if r.LastAccess != nil {
		logger = logger.WithField("idle", now.Sub(*r.LastAccess).Round(time.Second).String())
	}

	w.setState(StateSending)

	if err := w.sender.Send(ctx, r.Command, now); err != nil {
		logger.Error().WithError(err).Log("Sending command failed")

		r.Outcome = OutcomeSendError
		r.Err = err

		return w.finish(r)
	}

	logger.Info().Log("Command acknowledged")

	r.Outcome = OutcomeOK

	return w.finish(r)
}

func (w *watcher) finish(r Result) Result {
	r.FinishedAt = w.clock.Now()

	w.lock.Lock()
	defer w.lock.Unlock()

	w.cycles[r.Outcome]++

	if r.Outcome == OutcomeOK {
		w.sent[r.Command.String()]++
	}

	w.last = &r

	return r
}

func (w *watcher) setState(s State) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.state = s
}

func (w *watcher) State() State {
	w.lock.RLock()
	defer w.lock.RUnlock()

	return w.state
}

func (w *watcher) Last() (Result, bool) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.last == nil {
		return Result{}, false
	}

	return *w.last, true
}

func (w *watcher) LastAccess() *time.Time {
	return w.tracker.Last()
}

func (w *watcher) Stats() Stats {
	w.lock.RLock()
	defer w.lock.RUnlock()

	s := Stats{
		Cycles:   make(map[string]uint64, len(w.cycles)),
		Skipped:  w.skipped,
		Commands: make(map[string]uint64, len(w.sent)),
	}

	for k, v := range w.cycles {
		s.Cycles[k] = v
	}

	for k, v := range w.sent {
		s.Commands[k] = v
	}

	return s
}
