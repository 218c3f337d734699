package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/app"
	"github.com/datarhei/foldwatch/fah"
	"github.com/datarhei/foldwatch/http/api"
	"github.com/datarhei/foldwatch/http/mock"
	"github.com/datarhei/foldwatch/log"
	"github.com/datarhei/foldwatch/watcher"

	"github.com/stretchr/testify/require"
)

type dummyWatcher struct {
	watcher.Watcher

	state  watcher.State
	access *time.Time
	last   *watcher.Result
	runErr error
}

func (w *dummyWatcher) State() watcher.State { return w.state }

func (w *dummyWatcher) LastAccess() *time.Time { return w.access }

func (w *dummyWatcher) Last() (watcher.Result, bool) {
	if w.last == nil {
		return watcher.Result{}, false
	}

	return *w.last, true
}

func (w *dummyWatcher) RunOnce(ctx context.Context) (watcher.Result, error) {
	if w.runErr != nil {
		return watcher.Result{}, w.runErr
	}

	return *w.last, nil
}

func TestAbout(t *testing.T) {
	router := mock.DummyEcho()

	handler := NewAbout("id-1", "frosty-sun", time.Now().Add(-time.Minute))
	router.GET("/", handler.About)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	about := api.About{}
	response.Decode(t, &about)

	require.Equal(t, app.Name, about.App)
	require.Equal(t, "id-1", about.ID)
	require.Equal(t, "frosty-sun", about.Name)
	require.GreaterOrEqual(t, about.Uptime, uint64(59))
	require.Equal(t, app.Version.String(), about.Version.Number)
}

func TestStateEmpty(t *testing.T) {
	router := mock.DummyEcho()

	handler := NewState(StateConfig{
		Watcher:          &dummyWatcher{},
		UnpauseThreshold: 30 * time.Minute,
		Interval:         30 * time.Second,
	})
	router.GET("/", handler.State)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	state := api.State{}
	response.Decode(t, &state)

	require.Equal(t, "idle", state.Phase)
	require.Nil(t, state.LastAccess)
	require.Nil(t, state.LastCheck)
	require.Equal(t, int64(1800000), state.Check.UnpauseThreshold)
	require.Equal(t, int64(30000), state.Check.Interval)
}

func TestState(t *testing.T) {
	access := time.Date(2025, time.July, 16, 17, 58, 45, 0, time.UTC)

	w := &dummyWatcher{
		state:  watcher.StateSending,
		access: &access,
		last: &watcher.Result{
			ID:         "abc",
			StartedAt:  access,
			FinishedAt: access,
			LastAccess: &access,
			Command:    activity.Pause,
			Outcome:    watcher.OutcomeSendError,
			Err:        fah.ErrTimeout,
		},
	}

	router := mock.DummyEcho()

	handler := NewState(StateConfig{Watcher: w})
	router.GET("/", handler.State)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	state := api.State{}
	response.Decode(t, &state)

	require.Equal(t, "sending", state.Phase)
	require.Equal(t, "2025-07-16T17:58:45Z", *state.LastAccess)
	require.NotNil(t, state.LastCheck)
	require.Equal(t, "abc", state.LastCheck.ID)
	require.Equal(t, "pause", state.LastCheck.Command)
	require.Equal(t, "send_error", state.LastCheck.Outcome)
	require.Equal(t, fah.ErrTimeout.Error(), state.LastCheck.Error)
}

func TestStateLogError(t *testing.T) {
	w := &dummyWatcher{
		last: &watcher.Result{
			ID:      "abc",
			Outcome: watcher.OutcomeLogError,
			Err:     errors.New("access log unreadable"),
		},
	}

	router := mock.DummyEcho()

	handler := NewState(StateConfig{Watcher: w})
	router.GET("/", handler.State)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	state := api.State{}
	response.Decode(t, &state)

	require.Equal(t, "", state.LastCheck.Command)
	require.Nil(t, state.LastCheck.LastAccess)
}

func TestCheck(t *testing.T) {
	w := &dummyWatcher{
		last: &watcher.Result{
			ID:      "abc",
			Command: activity.Fold,
			Outcome: watcher.OutcomeOK,
		},
	}

	router := mock.DummyEcho()

	handler := NewState(StateConfig{Watcher: w})
	router.POST("/", handler.Check)

	response := mock.Request(t, http.StatusOK, router, "POST", "/", nil)

	result := api.CheckResult{}
	response.Decode(t, &result)

	require.Equal(t, "abc", result.ID)
	require.Equal(t, "fold", result.Command)
	require.Equal(t, "", result.Error)
}

func TestCheckBusy(t *testing.T) {
	router := mock.DummyEcho()

	handler := NewState(StateConfig{Watcher: &dummyWatcher{runErr: watcher.ErrBusy}})
	router.POST("/", handler.Check)

	response := mock.Request(t, http.StatusConflict, router, "POST", "/", nil)

	e := api.Error{}
	response.Decode(t, &e)

	require.Equal(t, http.StatusConflict, e.Code)
	require.Equal(t, []string{watcher.ErrBusy.Error()}, e.Details)
}

func TestLog(t *testing.T) {
	buffer := log.NewBufferWriter(log.Linfo, 10)
	logger := log.New("Test").WithOutput(buffer)

	logger.Info().WithField("foo", "bar").Log("hello")
	logger.Error().WithError(errors.New("broken")).Log("failed")

	router := mock.DummyEcho()

	handler := NewLog(buffer)
	router.GET("/", handler.Log)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	lines := []string{}
	response.Decode(t, &lines)

	require.Equal(t, 2, len(lines))
	require.Contains(t, lines[0], "hello")

	response = mock.Request(t, http.StatusOK, router, "GET", "/?format=raw", nil)

	events := []api.LogEvent{}
	response.Decode(t, &events)

	require.Equal(t, 2, len(events))
	require.Equal(t, "hello", events[0]["message"])
	require.Equal(t, "bar", events[0]["foo"])
	require.Equal(t, "Test", events[0]["component"])
	require.Equal(t, "ERROR", events[1]["level"])
	require.Equal(t, "broken", events[1]["error"])

	mock.Request(t, http.StatusBadRequest, router, "GET", "/?format=xml", nil)
}

func TestLogEmpty(t *testing.T) {
	router := mock.DummyEcho()

	handler := NewLog(nil)
	router.GET("/", handler.Log)

	response := mock.Request(t, http.StatusOK, router, "GET", "/", nil)

	require.Equal(t, []interface{}{}, response.Data)
}
