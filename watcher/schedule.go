package watcher

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

type Scheduler interface {
	// NextAfter returns the duration until the next check in reference to
	// the given time. If there's no next check, a negative duration
	// and an error will be returned.
	NextAfter(after time.Time) (time.Duration, error)
}

type intervalScheduler struct {
	interval time.Duration
}

// NewIntervalScheduler returns a scheduler with a fixed time between two checks.
func NewIntervalScheduler(interval time.Duration) (Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("the interval must be greater than 0")
	}

	return &intervalScheduler{interval: interval}, nil
}

func (s *intervalScheduler) NextAfter(after time.Time) (time.Duration, error) {
	return s.interval, nil
}

type cronScheduler struct {
	pattern string
}

// NewCronScheduler returns a scheduler that checks according to a cron expression.
func NewCronScheduler(pattern string) (Scheduler, error) {
	cron := gronx.New()
	if !cron.IsValid(pattern) {
		return nil, fmt.Errorf("invalid cron expression '%s'", pattern)
	}

	return &cronScheduler{pattern: pattern}, nil
}

func (s *cronScheduler) NextAfter(after time.Time) (time.Duration, error) {
	t, err := gronx.NextTickAfter(s.pattern, after, false)
	if err != nil {
		return time.Duration(-1), fmt.Errorf("no next time has been scheduled")
	}

	d := t.Sub(after)
	if d < time.Duration(0) {
		return d, fmt.Errorf("no next time has been scheduled")
	}

	return d, nil
}
