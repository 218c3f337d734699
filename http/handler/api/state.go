package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/datarhei/foldwatch/http/api"
	"github.com/datarhei/foldwatch/watcher"

	"github.com/labstack/echo/v4"
)

// The StateHandler type provides handler functions for reading the state
// of the watcher and for triggering a check.
type StateHandler struct {
	watcher watcher.Watcher
	check   api.CheckConfig
}

type StateConfig struct {
	Watcher          watcher.Watcher
	UnpauseThreshold time.Duration
	Interval         time.Duration
	Schedule         string
}

// NewState returns a new State type. You have to provide a watcher.
func NewState(config StateConfig) *StateHandler {
	return &StateHandler{
		watcher: config.Watcher,
		check: api.CheckConfig{
			UnpauseThreshold: config.UnpauseThreshold.Milliseconds(),
			Interval:         config.Interval.Milliseconds(),
			Schedule:         config.Schedule,
		},
	}
}

// State returns the current state of the watcher
func (s *StateHandler) State(c echo.Context) error {
	state := api.State{
		Phase:      s.watcher.State().String(),
		LastAccess: api.FormatTime(s.watcher.LastAccess()),
		Check:      s.check,
	}

	if r, ok := s.watcher.Last(); ok {
		state.LastCheck = &api.CheckResult{}
		state.LastCheck.Unmarshal(r)
	}

	return c.JSON(http.StatusOK, state)
}

// Check runs a check now and returns its result
func (s *StateHandler) Check(c echo.Context) error {
	r, err := s.watcher.RunOnce(c.Request().Context())
	if err != nil {
		if errors.Is(err, watcher.ErrBusy) {
			return api.Err(http.StatusConflict, "", "%s", err.Error())
		}

		return api.Err(http.StatusInternalServerError, "", "%s", err.Error())
	}

	result := api.CheckResult{}
	result.Unmarshal(r)

	return c.JSON(http.StatusOK, result)
}
