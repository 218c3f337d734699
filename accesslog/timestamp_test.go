package accesslog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("16/Jul/2025:19:58:45 +0200")
	require.NoError(t, err)

	require.True(t, ts.Equal(time.Date(2025, time.July, 16, 17, 58, 45, 0, time.UTC)))

	_, offset := ts.Zone()
	require.Equal(t, 2*60*60, offset)
}

func TestParseTimestampOffset(t *testing.T) {
	a, err := ParseTimestamp("16/Jul/2025:19:58:45 +0200")
	require.NoError(t, err)

	b, err := ParseTimestamp("16/Jul/2025:19:58:45 +0000")
	require.NoError(t, err)

	require.Equal(t, 2*time.Hour, b.Sub(a))

	c, err := ParseTimestamp("16/Jul/2025:12:28:45 -0530")
	require.NoError(t, err)
	require.True(t, a.Equal(c))
}

func TestParseTimestampMalformed(t *testing.T) {
	tokens := []string{
		"",
		"16/Jul/2025:19:58:45",
		"16/Foo/2025:19:58:45 +0200",
		"16/jul/2025:19:58:45 +0200",
		"16/July/2025:19:58:45 +0200",
		"32/Jul/2025:19:58:45 +0200",
		"00/Jul/2025:19:58:45 +0200",
		"30/Feb/2025:19:58:45 +0200",
		"16/Jul/2025:24:58:45 +0200",
		"16/Jul/2025:19:60:45 +0200",
		"16/Jul/2025:19:58:60 +0200",
		"16/Jul/2025:19:58:45 0200 ",
		"16/Jul/2025:19:58:45 +0260",
		"16/Jul/2025 19:58:45 +0200",
		"1/Jul/2025:19:58:45 +0200 ",
	}

	for _, token := range tokens {
		_, err := ParseTimestamp(token)
		require.ErrorIs(t, err, ErrMalformedTimestamp, token)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("", 2*60*60),
		time.FixedZone("", -(9*60*60 + 30*60)),
	}

	for _, zone := range zones {
		ts := time.Date(2024, time.February, 29, 23, 59, 59, 0, zone)

		token := FormatTimestamp(ts)

		parsed, err := ParseTimestamp(token)
		require.NoError(t, err, token)
		require.True(t, ts.Equal(parsed), token)
		require.Equal(t, token, FormatTimestamp(parsed))
	}
}
