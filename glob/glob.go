// Package glob matches strings against shell-like patterns.
package glob

import (
	"strings"

	"github.com/gobwas/glob"
)

type Glob interface {
	Match(name string) bool

	// String returns the pattern the Glob has been compiled from.
	String() string
}

type globber struct {
	pattern string
	glob    glob.Glob
}

func Compile(pattern string, separators ...rune) (Glob, error) {
	g, err := glob.Compile(pattern, separators...)
	if err != nil {
		return nil, err
	}

	return &globber{pattern: pattern, glob: g}, nil
}

func (g *globber) Match(name string) bool {
	return g.glob.Match(name)
}

func (g *globber) String() string {
	return g.pattern
}

// QuoteMeta escapes all glob meta characters in s such that the result
// matches s literally.
func QuoteMeta(s string) string {
	return glob.QuoteMeta(s)
}

// Contains returns a pattern that matches any string containing s.
func Contains(s string) string {
	return "*" + QuoteMeta(s) + "*"
}

func IsPattern(pattern string) bool {
	index := strings.IndexAny(pattern, "*?[{")
	return index != -1
}
