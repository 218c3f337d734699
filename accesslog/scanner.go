package accesslog

import (
	"bufio"
	"container/ring"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/datarhei/foldwatch/log"
)

var (
	// ErrLogUnreadable is returned if the access log can't be opened or read.
	ErrLogUnreadable = errors.New("access log unreadable")

	// ErrNoMatch is returned if none of the inspected lines is an access to the target.
	ErrNoMatch = errors.New("no matching line")
)

// MaxLineSize is the longest line the scanner accepts.
const MaxLineSize = 1024 * 1024

type Config struct {
	Path      string     // Path to the access log
	TailLines int        // Number of latest lines to inspect, defaults to 100
	Matcher   Matcher    // Matcher for the target
	Logger    log.Logger // Logger
}

// Scanner finds the newest access to the target in the tail of the access log.
type Scanner interface {
	// Scan returns the timestamp of the newest matching line within the last
	// TailLines lines of the access log.
	Scan(ctx context.Context) (time.Time, error)
}

type scanner struct {
	path      string
	tailLines int
	matcher   Matcher
	logger    log.Logger
}

func NewScanner(config Config) (Scanner, error) {
	s := &scanner{
		path:      config.Path,
		tailLines: config.TailLines,
		matcher:   config.Matcher,
		logger:    config.Logger,
	}

	if len(s.path) == 0 {
		return nil, fmt.Errorf("no path provided")
	}

	if s.matcher == nil {
		return nil, fmt.Errorf("no matcher provided")
	}

	if s.tailLines <= 0 {
		s.tailLines = 100
	}

	if s.logger == nil {
		s.logger = log.New("")
	}

	s.logger = s.logger.WithField("path", s.path)

	return s, nil
}

func (s *scanner) Scan(ctx context.Context) (time.Time, error) {
	window, lines, err := s.tail(ctx)
	if err != nil {
		return time.Time{}, err
	}

	s.logger.Debug().WithField("lines", lines).Log("Read access log")

	// window points to the oldest line, walk backwards from the newest
	r := window.Prev()
	for i := 0; i < window.Len(); i++ {
		line, ok := r.Value.(string)
		if !ok {
			break
		}

		r = r.Prev()

		token, ok := s.matcher.Match(line)
		if !ok {
			continue
		}

		t, err := ParseTimestamp(token)
		if err != nil {
			s.logger.Debug().WithError(err).Log("Skipping line")
			continue
		}

		return t, nil
	}

	return time.Time{}, ErrNoMatch
}

// tail reads the whole file and keeps the last lines in a ring. It returns
// the ring positioned at the oldest line and the number of lines read.
func (s *scanner) tail(ctx context.Context) (*ring.Ring, int, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrLogUnreadable, err)
	}

	defer file.Close()

	window := ring.New(s.tailLines)
	lines := 0

	reader := bufio.NewScanner(file)
	reader.Buffer(make([]byte, 64*1024), MaxLineSize)

	for reader.Scan() {
		if lines%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, lines, err
			}
		}

		window.Value = reader.Text()
		window = window.Next()
		lines++
	}

	if err := reader.Err(); err != nil {
		return nil, lines, fmt.Errorf("%w: %w", ErrLogUnreadable, err)
	}

	return window, lines, nil
}
