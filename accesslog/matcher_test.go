package accesslog

import (
	"testing"

	"github.com/datarhei/foldwatch/glob"

	"github.com/stretchr/testify/require"
)

const target = "paperless.by.vincent.mahn.ke/dashboard"

func line(ts, referer string) string {
	return `91.67.124.93 - - [` + ts + `]  200 "GET /dashboard HTTP/1.1" 1752 "https://` + referer + `" "Mozilla/5.0" "-"`
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher(glob.Contains(target))
	require.NoError(t, err)
	require.Equal(t, `*paperless.by.vincent.mahn.ke/dashboard*`, m.String())

	token, ok := m.Match(line("16/Jul/2025:19:58:45 +0200", target))
	require.True(t, ok)
	require.Equal(t, "16/Jul/2025:19:58:45 +0200", token)

	_, ok = m.Match(line("16/Jul/2025:19:58:45 +0200", "paperless.by.vincent.mahn.ke/documents"))
	require.False(t, ok)

	_, ok = m.Match(`91.67.124.93 - - "GET /dashboard HTTP/1.1" "https://` + target + `"`)
	require.False(t, ok)

	_, ok = m.Match(`91.67.124.93 - - [16/Jul/2025:19:58:45 +0200 "https://` + target + `"`)
	require.False(t, ok)

	_, ok = m.Match("")
	require.False(t, ok)
}

func TestMatcherTargetBeforeBrackets(t *testing.T) {
	m, err := NewMatcher(glob.Contains(target))
	require.NoError(t, err)

	_, ok := m.Match(target + ` [16/Jul/2025:19:58:45 +0200] "GET / HTTP/1.1"`)
	require.False(t, ok)
}

func TestMatcherFirstBracketGroup(t *testing.T) {
	m, err := NewMatcher(glob.Contains(target))
	require.NoError(t, err)

	token, ok := m.Match(`1.2.3.4 [16/Jul/2025:19:58:45 +0200] [upstream] "https://` + target + `"`)
	require.True(t, ok)
	require.Equal(t, "16/Jul/2025:19:58:45 +0200", token)
}

func TestMatcherRepeatedTarget(t *testing.T) {
	m, err := NewMatcher(glob.Contains(target))
	require.NoError(t, err)

	token, ok := m.Match(`1.2.3.4 [16/Jul/2025:19:58:45 +0200] "https://` + target + `" "https://` + target + `"`)
	require.True(t, ok)
	require.Equal(t, "16/Jul/2025:19:58:45 +0200", token)
}

func TestMatcherLiteralDots(t *testing.T) {
	m, err := NewMatcher(glob.Contains(target))
	require.NoError(t, err)

	_, ok := m.Match(line("16/Jul/2025:19:58:45 +0200", "paperlessXbyXvincentXmahnXke/dashboard"))
	require.False(t, ok)
}

func TestMatcherPattern(t *testing.T) {
	m, err := NewMatcher(`*"GET /{dashboard,views} *`)
	require.NoError(t, err)

	_, ok := m.Match(line("16/Jul/2025:19:58:45 +0200", "example.com"))
	require.True(t, ok)
}

func TestMatcherNoPattern(t *testing.T) {
	_, err := NewMatcher("")
	require.Error(t, err)
}
