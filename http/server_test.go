package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/http/mock"
	"github.com/datarhei/foldwatch/log"
	"github.com/datarhei/foldwatch/prometheus"
	"github.com/datarhei/foldwatch/watcher"

	"github.com/stretchr/testify/require"
)

type staticScanner struct {
	t time.Time
}

func (s *staticScanner) Scan(ctx context.Context) (time.Time, error) {
	return s.t, nil
}

type nopSender struct{}

func (s *nopSender) Send(ctx context.Context, cmd activity.Command, now time.Time) error {
	return nil
}

func newTestServer(t *testing.T, withMetrics bool) Server {
	w, err := watcher.New(watcher.Config{
		Scanner:   &staticScanner{t: time.Now()},
		Sender:    &nopSender{},
		Threshold: 30 * time.Minute,
	})
	require.NoError(t, err)

	config := Config{
		Logger:    log.New("HTTP"),
		LogBuffer: log.NewBufferWriter(log.Linfo, 10),
		Watcher:   w,
		About: AboutConfig{
			ID:        "abc",
			Name:      "frosty-sun",
			CreatedAt: time.Now(),
		},
	}

	if withMetrics {
		m := prometheus.New()
		require.NoError(t, m.Register(prometheus.NewWatcherCollector("abc", w)))
		config.Prometheus = m
	}

	s, err := NewServer(config)
	require.NoError(t, err)

	return s
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, false)

	response := mock.Request(t, http.StatusOK, s, "GET", "/ping", nil)
	require.Equal(t, "pong", string(response.Data.([]byte)))

	mock.Request(t, http.StatusOK, s, "GET", "/api/v1/about", nil)
	mock.Request(t, http.StatusOK, s, "GET", "/api/v1/state", nil)
	mock.Request(t, http.StatusOK, s, "GET", "/api/v1/log", nil)
	mock.Request(t, http.StatusNotFound, s, "GET", "/metrics", nil)
	mock.Request(t, http.StatusMethodNotAllowed, s, "GET", "/api/v1/check", nil)
}

func TestServerCheck(t *testing.T) {
	s := newTestServer(t, true)

	response := mock.Request(t, http.StatusOK, s, "POST", "/api/v1/check", nil)

	data := response.Data.(map[string]interface{})
	require.Equal(t, "pause", data["command"])
	require.Equal(t, "ok", data["outcome"])

	response = mock.Request(t, http.StatusOK, s, "GET", "/metrics", nil)
	require.Contains(t, string(response.Raw), `watcher_commands_total{command="pause",instance="abc"} 1`)
}

func TestServerNoWatcher(t *testing.T) {
	_, err := NewServer(Config{})
	require.Error(t, err)
}
