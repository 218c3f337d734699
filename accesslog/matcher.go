// Package accesslog finds the latest access to a watched target in the
// tail of a webserver access log.
package accesslog

import (
	"fmt"
	"strings"

	"github.com/datarhei/foldwatch/glob"
)

// Matcher decides whether a log line is an access to the watched target.
type Matcher interface {
	// Match returns the content of the first bracket group of the line if
	// the rest of the line after that group matches the target pattern.
	Match(line string) (string, bool)

	// String returns the target pattern.
	String() string
}

type matcher struct {
	pattern glob.Glob
}

// NewMatcher compiles the glob pattern for the watched target. Use
// glob.Contains() for a pattern that matches a literal anywhere in
// the request part of a line.
func NewMatcher(pattern string) (Matcher, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("no pattern provided")
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	m := &matcher{
		pattern: g,
	}

	return m, nil
}

func (m *matcher) Match(line string) (string, bool) {
	start := strings.IndexByte(line, '[')
	if start == -1 {
		return "", false
	}

	end := strings.IndexByte(line[start+1:], ']')
	if end == -1 {
		return "", false
	}

	end += start + 1

	if !m.pattern.Match(line[end+1:]) {
		return "", false
	}

	return line[start+1 : end], true
}

func (m *matcher) String() string {
	return m.pattern.String()
}
