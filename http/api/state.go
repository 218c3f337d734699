package api

import (
	"time"

	"github.com/datarhei/foldwatch/watcher"
)

// State is the current state of the watcher
type State struct {
	Phase      string       `json:"phase" enums:"idle,scanning,deciding,sending"`
	LastAccess *string      `json:"last_access"` // RFC3339
	LastCheck  *CheckResult `json:"last_check"`
	Check      CheckConfig  `json:"check"`
}

// CheckConfig are the essentials of the check configuration
type CheckConfig struct {
	UnpauseThreshold int64  `json:"unpause_threshold_ms"`
	Interval         int64  `json:"interval_ms"`
	Schedule         string `json:"schedule"`
}

// CheckResult is the result of a single check
type CheckResult struct {
	ID         string  `json:"id"`
	StartedAt  string  `json:"started_at"`  // RFC3339
	FinishedAt string  `json:"finished_at"` // RFC3339
	LastAccess *string `json:"last_access"` // RFC3339
	Outcome    string  `json:"outcome" enums:"ok,log_error,send_error"`
	Command    string  `json:"command,omitempty" enums:"fold,pause"`
	Error      string  `json:"error,omitempty"`
}

// Unmarshal converts a watcher result to its API representation
func (c *CheckResult) Unmarshal(r watcher.Result) {
	c.ID = r.ID
	c.StartedAt = r.StartedAt.Format(time.RFC3339)
	c.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	c.LastAccess = FormatTime(r.LastAccess)
	c.Outcome = r.Outcome
	c.Command = ""
	c.Error = ""

	if r.Outcome != watcher.OutcomeLogError {
		c.Command = r.Command.String()
	}

	if r.Err != nil {
		c.Error = r.Err.Error()
	}
}

// FormatTime returns t in RFC3339 or nil if t is nil
func FormatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(time.RFC3339)

	return &s
}
