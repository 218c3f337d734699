package log

import (
	"net/http"
	"testing"

	"github.com/datarhei/foldwatch/http/mock"
	"github.com/datarhei/foldwatch/log"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestLogRequests(t *testing.T) {
	buffer := log.NewBufferWriter(log.Ldebug, 10)

	router := mock.DummyEcho()
	router.Use(NewWithConfig(Config{
		Logger: log.New("HTTP").WithOutput(buffer),
	}))

	router.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	router.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "busy")
	})

	mock.Request(t, http.StatusOK, router, "GET", "/ok?a=b", nil)
	mock.Request(t, http.StatusConflict, router, "GET", "/fail", nil)

	events := buffer.Events()
	require.Equal(t, 2, len(events))

	require.Equal(t, log.Ldebug, events[0].Level)
	require.Equal(t, "/ok?a=b", events[0].Data["path"])
	require.Equal(t, http.StatusOK, events[0].Data["status"])

	require.Equal(t, log.Lwarn, events[1].Level)
	require.Equal(t, http.StatusConflict, events[1].Data["status"])
}
