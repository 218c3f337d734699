package accesslog

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTimestamp is returned if a token is not a valid access log timestamp.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// TimestampLayout is the common log format timestamp, e.g. 16/Jul/2025:19:58:45 +0200
const TimestampLayout = "02/Jan/2006:15:04:05 -0700"

var months = map[string]struct{}{
	"Jan": {}, "Feb": {}, "Mar": {}, "Apr": {}, "May": {}, "Jun": {},
	"Jul": {}, "Aug": {}, "Sep": {}, "Oct": {}, "Nov": {}, "Dec": {},
}

// ParseTimestamp parses a timestamp token of an access log line. The
// timezone offset of the token is part of the returned instant.
func ParseTimestamp(token string) (time.Time, error) {
	// time.Parse is case insensitive for month names
	if len(token) != len(TimestampLayout) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMalformedTimestamp, token)
	}

	if _, ok := months[token[3:6]]; !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month in %s", ErrMalformedTimestamp, token)
	}

	if token[21] != '+' && token[21] != '-' {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMalformedTimestamp, token)
	}

	if token[24] > '5' {
		return time.Time{}, fmt.Errorf("%w: offset out of range in %s", ErrMalformedTimestamp, token)
	}

	t, err := time.Parse(TimestampLayout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedTimestamp, err)
	}

	return t, nil
}

// FormatTimestamp formats t the way ParseTimestamp expects it.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
