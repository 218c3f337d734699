// Package http implements the status API of foldwatch.
package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/datarhei/foldwatch/http/errorhandler"
	"github.com/datarhei/foldwatch/http/handler"
	api "github.com/datarhei/foldwatch/http/handler/api"
	httplog "github.com/datarhei/foldwatch/http/log"
	"github.com/datarhei/foldwatch/log"
	"github.com/datarhei/foldwatch/prometheus"
	"github.com/datarhei/foldwatch/watcher"

	mwlog "github.com/datarhei/foldwatch/http/middleware/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	Logger     log.Logger
	LogBuffer  log.BufferWriter
	Watcher    watcher.Watcher
	Prometheus prometheus.Reader
	About      AboutConfig
	Check      CheckConfig
}

type AboutConfig struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type CheckConfig struct {
	UnpauseThreshold time.Duration
	Interval         time.Duration
	Schedule         string
}

type Server interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type server struct {
	logger log.Logger

	handler struct {
		about      *api.AboutHandler
		state      *api.StateHandler
		log        *api.LogHandler
		prometheus *handler.PrometheusHandler
		ping       *handler.PingHandler
	}

	middleware struct {
		log echo.MiddlewareFunc
	}

	router *echo.Echo
}

func NewServer(config Config) (Server, error) {
	s := &server{
		logger: config.Logger,
	}

	if config.Watcher == nil {
		return nil, fmt.Errorf("no watcher provided")
	}

	if s.logger == nil {
		s.logger = log.New("HTTP")
	}

	s.handler.about = api.NewAbout(
		config.About.ID,
		config.About.Name,
		config.About.CreatedAt,
	)

	s.handler.state = api.NewState(api.StateConfig{
		Watcher:          config.Watcher,
		UnpauseThreshold: config.Check.UnpauseThreshold,
		Interval:         config.Check.Interval,
		Schedule:         config.Check.Schedule,
	})

	s.handler.log = api.NewLog(
		config.LogBuffer,
	)

	if config.Prometheus != nil {
		s.handler.prometheus = handler.NewPrometheus(
			config.Prometheus.HTTPHandler(),
		)
	}

	s.handler.ping = handler.NewPing()

	s.middleware.log = mwlog.NewWithConfig(mwlog.Config{
		Logger: s.logger,
	})

	s.router = echo.New()
	s.router.HTTPErrorHandler = errorhandler.HTTPErrorHandler
	s.router.Use(s.middleware.log)
	s.router.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			rows := strings.Split(string(stack), "\n")
			s.logger.Error().WithField("stack", rows).Log("recovered from a panic")
			return nil
		},
	}))

	s.router.HideBanner = true
	s.router.HidePort = true

	s.router.Logger.SetOutput(httplog.NewWrapper(s.logger))

	s.setRoutes()

	return s, nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) setRoutes() {
	// Health check
	s.router.GET("/ping", s.handler.ping.Ping)

	// Prometheus metrics
	if s.handler.prometheus != nil {
		s.router.GET("/metrics", s.handler.prometheus.Metrics)
	}

	v1 := s.router.Group("/api/v1")

	v1.GET("/about", s.handler.about.About)
	v1.GET("/state", s.handler.state.State)
	v1.POST("/check", s.handler.state.Check)
	v1.GET("/log", s.handler.log.Log)
}
