// Package activity decides from the last known dashboard access whether
// the worker should fold or pause.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/datarhei/foldwatch/encoding/json"
)

// Command is the state the worker is asked to enter.
type Command int

const (
	Fold Command = iota
	Pause
)

func (c Command) String() string {
	switch c {
	case Fold:
		return "fold"
	case Pause:
		return "pause"
	}

	return fmt.Sprintf("command(%d)", int(c))
}

func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// ParseCommand is the inverse of String.
func ParseCommand(s string) (Command, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "pause":
		return Pause, nil
	}

	return Fold, fmt.Errorf("unknown command '%s'", s)
}

// Decide returns Pause if the last access is at most threshold old, otherwise Fold.
// Without any known access it returns Fold.
func Decide(now time.Time, last *time.Time, threshold time.Duration) Command {
	if last == nil {
		return Fold
	}

	if now.Sub(*last) > threshold {
		return Fold
	}

	return Pause
}

// Tracker keeps the last known access.
type Tracker interface {
	// Last returns the last observed access or nil if none has been observed.
	Last() *time.Time

	// Observe replaces the last known access with t.
	Observe(t time.Time)
}

type tracker struct {
	last *time.Time
	lock sync.RWMutex
}

func NewTracker() Tracker {
	return &tracker{}
}

func (t *tracker) Last() *time.Time {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if t.last == nil {
		return nil
	}

	last := *t.last

	return &last
}

func (t *tracker) Observe(last time.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.last = &last
}
