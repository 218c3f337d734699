// Package time provides a replaceable clock for components that decide
// based on the current wall time.
package time

import (
	"sync"
	"time"
)

type Source interface {
	Now() time.Time
}

// StdSource reads the system clock.
type StdSource struct{}

func (s *StdSource) Now() time.Time {
	return time.Now()
}

// TestSource is a clock that only moves when told to.
type TestSource struct {
	lock sync.RWMutex
	n    time.Time
}

func NewTestSource(t time.Time) *TestSource {
	return &TestSource{
		n: t,
	}
}

func (t *TestSource) Now() time.Time {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.n
}

func (t *TestSource) Set(n time.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.n = n
}

func (t *TestSource) Add(d time.Duration) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.n = t.n.Add(d)
}
