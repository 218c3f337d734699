package api

import (
	"context"
	"fmt"
	"io"
	golog "log"
	gohttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/datarhei/foldwatch/accesslog"
	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/app"
	"github.com/datarhei/foldwatch/config"
	configstore "github.com/datarhei/foldwatch/config/store"
	configvars "github.com/datarhei/foldwatch/config/vars"
	"github.com/datarhei/foldwatch/fah"
	"github.com/datarhei/foldwatch/http"
	"github.com/datarhei/foldwatch/log"
	"github.com/datarhei/foldwatch/prometheus"
	"github.com/datarhei/foldwatch/watcher"

	"github.com/google/gops/agent"
	"go.uber.org/automaxprocs/maxprocs"
)

type API interface {
	// Start starts the API. This is blocking until the app has
	// been ended with Stop() or Destroy(). In this case a nil error
	// is returned. An ErrConfigReload error is returned if a
	// configuration reload has been requested.
	Start(ctx context.Context) error

	// Stop stops the API, some states may be kept intact such
	// that they can be reused after starting the API again.
	Stop()

	// Destroy is the same as Stop() but no state will be kept intact.
	Destroy()

	// Reload the configuration for the API. If there's an error the
	// previously loaded configuration is not altered.
	Reload() error

	// RequestReload makes a running Start() return ErrConfigReload.
	RequestReload()
}

type api struct {
	tracker    activity.Tracker
	watcher    watcher.Watcher
	prom       prometheus.Metrics
	mainserver *gohttp.Server

	errorChan chan error

	log struct {
		writer io.Writer
		buffer log.BufferWriter
		logger struct {
			core log.Logger
			main log.Logger
		}
	}

	config struct {
		path   string
		store  configstore.Store
		config *config.Config
	}

	lock   sync.Mutex
	wgStop sync.WaitGroup
	state  string

	undoMaxprocs func()
}

// ErrConfigReload is an error returned to indicate that a reload of
// the configuration has been requested.
var ErrConfigReload = fmt.Errorf("configuration reload")

// New returns a new instance of the API interface. An empty configpath
// keeps the configuration in memory.
func New(configpath string, logwriter io.Writer) (API, error) {
	a := &api{
		state: "idle",
	}

	a.config.path = configpath
	a.log.writer = logwriter

	if a.log.writer == nil {
		a.log.writer = io.Discard
	}

	a.errorChan = make(chan error, 1)

	if err := a.Reload(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *api) Reload() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.state == "running" {
		return fmt.Errorf("can't reload config while running")
	}

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	logger := log.New("Core").WithOutput(log.NewConsoleWriter(a.log.writer, log.Lwarn, true))

	store, err := configstore.NewJSON(a.config.path, func() {
		select {
		case a.errorChan <- ErrConfigReload:
		default:
		}
	})
	if err != nil {
		return err
	}

	cfg := store.Get()

	cfg.Merge()

	cfg.Validate(false)

	loglevel, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn().WithError(err).Log("Falling back to log level %s", loglevel.String())
	}

	buffer := log.NewBufferWriter(loglevel, cfg.Log.MaxLines)

	logger = logger.WithOutput(
		log.NewMultiWriter(
			log.NewTopicWriter(
				log.NewConsoleWriter(a.log.writer, loglevel, true),
				cfg.Log.Topics,
			),
			buffer,
		),
	)

	logfields := log.Fields{
		"application": app.Name,
		"version":     app.Version.String(),
		"arch":        app.Arch,
		"compiler":    app.Compiler,
	}

	if len(app.Commit) != 0 && len(app.Branch) != 0 {
		logfields["commit"] = app.Commit
		logfields["branch"] = app.Branch
	}

	if len(app.Build) != 0 {
		logfields["build"] = app.Build
	}

	logger.Info().WithFields(logfields).Log("")

	if len(a.config.path) != 0 {
		logger.Info().WithField("path", a.config.path).Log("Read config file")
	}

	configlogger := logger.WithComponent("Config")
	cfg.Messages(func(level string, v configvars.Variable, message string) {
		configlogger = configlogger.WithFields(log.Fields{
			"variable":    v.Name,
			"value":       v.Value,
			"env":         v.EnvName,
			"description": v.Description,
			"override":    v.Merged,
		})
		configlogger.Debug().Log(message)

		switch level {
		case "warn":
			configlogger.Warn().Log(message)
		case "error":
			configlogger.Error().WithField("error", message).Log("")
		default:
			break
		}
	})

	if cfg.HasErrors() {
		logger.Error().WithField("error", "Not all variables are set or are valid. Check the error messages above. Bailing out.").Log("")
		return fmt.Errorf("not all variables are set or valid")
	}

	cfg.LoadedAt = time.Now()

	store.SetActive(cfg)

	a.config.store = store
	a.config.config = cfg
	a.log.logger.core = logger
	a.log.buffer = buffer

	return nil
}

func (a *api) start(ctx context.Context) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	if a.state == "running" {
		return fmt.Errorf("already running")
	}

	a.state = "starting"

	cfg := a.config.store.GetActive()

	if cfg.Debug.AutoMaxProcs {
		undoMaxprocs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			format = strings.TrimPrefix(format, "maxprocs: ")
			a.log.logger.core.Debug().Log(format, args...)
		}))
		if err != nil {
			a.log.logger.core.Warn().Log("%s", err.Error())
		}

		a.undoMaxprocs = undoMaxprocs
	}

	if len(cfg.Debug.AgentAddress) != 0 {
		if err := agent.Listen(agent.Options{
			Addr:                   cfg.Debug.AgentAddress,
			ReuseSocketAddrAndPort: true,
		}); err != nil {
			a.log.logger.core.Error().WithError(err).Log("")
		}
	}

	matcher, err := accesslog.NewMatcher(cfg.DashboardPattern())
	if err != nil {
		return fmt.Errorf("unable to create dashboard matcher: %w", err)
	}

	scanner, err := accesslog.NewScanner(accesslog.Config{
		Path:      cfg.AccessLog.Path,
		TailLines: cfg.AccessLog.TailLines,
		Matcher:   matcher,
		Logger:    a.log.logger.core.WithComponent("Scanner"),
	})
	if err != nil {
		return fmt.Errorf("unable to create access log scanner: %w", err)
	}

	client, err := fah.NewClient(fah.Config{
		Address:    cfg.FAH.Address,
		Timeout:    cfg.CheckTimeout(),
		GraceDelay: cfg.GraceDelay(),
		Logger:     a.log.logger.core.WithComponent("FAH"),
	})
	if err != nil {
		return fmt.Errorf("unable to create FAHClient connection: %w", err)
	}

	// The last known access survives a restart of the API, but not of the process
	if a.tracker == nil {
		a.tracker = activity.NewTracker()
	}

	w, err := watcher.New(watcher.Config{
		Scanner:   scanner,
		Tracker:   a.tracker,
		Sender:    client,
		Threshold: cfg.UnpauseThreshold(),
		Interval:  cfg.CheckInterval(),
		Schedule:  cfg.Check.Schedule,
		Timeout:   cfg.CheckTimeout(),
		Logger:    a.log.logger.core.WithComponent("Watcher"),
	})
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}

	a.watcher = w

	a.log.logger.core.Info().WithFields(log.Fields{
		"accesslog": cfg.AccessLog.Path,
		"pattern":   matcher.String(),
		"fah":       cfg.FAH.Address,
		"threshold": cfg.UnpauseThreshold().String(),
	}).Log("Watching for dashboard access")

	if cfg.Metrics.Enable {
		a.prom = prometheus.New()

		a.prom.Register(prometheus.NewUptimeCollector(cfg.ID, time.Now()))
		a.prom.Register(prometheus.NewWatcherCollector(cfg.ID, a.watcher))
	}

	if cfg.API.Enable {
		if err := a.startServer(cfg); err != nil {
			return err
		}
	}

	a.watcher.Start()

	a.state = "running"

	return nil
}

func (a *api) startServer(cfg *config.Config) error {
	a.log.logger.main = a.log.logger.core.WithComponent("HTTP").WithField("address", cfg.API.Address)

	serverConfig := http.Config{
		Logger:    a.log.logger.main,
		LogBuffer: a.log.buffer,
		Watcher:   a.watcher,
		About: http.AboutConfig{
			ID:        cfg.ID,
			Name:      cfg.Name,
			CreatedAt: cfg.LoadedAt,
		},
		Check: http.CheckConfig{
			UnpauseThreshold: cfg.UnpauseThreshold(),
			Interval:         cfg.CheckInterval(),
			Schedule:         cfg.Check.Schedule,
		},
	}

	if a.prom != nil {
		serverConfig.Prometheus = a.prom
	}

	mainserverhandler, err := http.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("unable to create server: %w", err)
	}

	sendError := func(err error) {
		select {
		case a.errorChan <- err:
		default:
		}
	}

	a.mainserver = &gohttp.Server{
		Addr:              cfg.API.Address,
		Handler:           mainserverhandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ErrorLog:          golog.New(a.log.logger.main.Debug(), "", 0),
	}

	wgStart := sync.WaitGroup{}

	wgStart.Add(1)
	a.wgStop.Add(1)

	go func() {
		logger := a.log.logger.main

		defer func() {
			logger.Info().Log("Server exited")
			a.wgStop.Done()
		}()

		wgStart.Done()

		logger.Info().Log("Server started")

		err := a.mainserver.ListenAndServe()
		if err != nil && err != gohttp.ErrServerClosed {
			err = fmt.Errorf("HTTP server: %w", err)
		} else {
			err = nil
		}

		sendError(err)
	}()

	// Wait for the server to be started
	wgStart.Wait()

	return nil
}

func (a *api) Start(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		a.stop()
		return err
	}

	// Block until there's an error from the server or a stop
	select {
	case err := <-a.errorChan:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (a *api) RequestReload() {
	a.lock.Lock()
	store := a.config.store
	a.lock.Unlock()

	if store != nil {
		store.Reload()
	}
}

func (a *api) stop() {
	a.lock.Lock()
	defer a.lock.Unlock()

	logger := a.log.logger.core.WithField("action", "shutdown")

	if a.state == "idle" {
		logger.Info().Log("Complete")
		return
	}

	if a.watcher != nil {
		logger.Info().Log("Stopping checks ...")
		a.watcher.Stop()
		a.watcher = nil
	}

	if a.prom != nil {
		a.prom.UnregisterAll()
		a.prom = nil
	}

	// Shutdown the HTTP server
	if a.mainserver != nil {
		logger := a.log.logger.main
		logger.Info().Log("Stopping ...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mainserver.Shutdown(ctx); err != nil {
			logger.Error().WithError(err).Log("")
		}

		a.mainserver = nil
	}

	// Stop gops agent
	agent.Close()

	// Wait for all server goroutines to exit
	logger.Info().Log("Waiting for all servers to stop ...")
	a.wgStop.Wait()

	// Drain error channel
	if a.errorChan != nil {
		close(a.errorChan)
		a.errorChan = nil
	}

	a.state = "idle"

	if a.undoMaxprocs != nil {
		a.undoMaxprocs()
		a.undoMaxprocs = nil
	}

	logger.Info().Log("Complete")
}

func (a *api) Stop() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()
}

func (a *api) Destroy() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()

	// Forget the last known access
	a.lock.Lock()
	a.tracker = nil
	a.lock.Unlock()

	a.log.logger.core.Close()
}
