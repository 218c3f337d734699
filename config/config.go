// Package config implements types for handling the configuation for the app.
package config

import (
	"time"

	"github.com/datarhei/foldwatch/config/value"
	"github.com/datarhei/foldwatch/config/vars"
	"github.com/datarhei/foldwatch/glob"

	haikunator "github.com/atrox/haikunatorgo/v2"
	"github.com/google/uuid"
)

const version int64 = 1

// Config is a wrapper for Data
type Config struct {
	vars vars.Variables

	Data
}

// New returns a Config which is initialized with its default values
func New() *Config {
	config := &Config{}

	config.init()

	return config
}

func (d *Config) Get(name string) (string, error) {
	return d.vars.Get(name)
}

func (d *Config) Set(name, val string) error {
	return d.vars.Set(name, val)
}

// Clone returns a clone of the configuration. The merged state of the
// variables is kept.
func (d *Config) Clone() *Config {
	data := New()

	data.CreatedAt = d.CreatedAt
	data.LoadedAt = d.LoadedAt
	data.UpdatedAt = d.UpdatedAt

	data.Version = d.Version
	data.ID = d.ID
	data.Name = d.Name

	data.Log = d.Log
	data.AccessLog = d.AccessLog
	data.Dashboard = d.Dashboard
	data.Check = d.Check
	data.FAH = d.FAH
	data.API = d.API
	data.Metrics = d.Metrics
	data.Debug = d.Debug

	data.Log.Topics = copyStrings(d.Log.Topics)

	data.vars.Transfer(&d.vars)

	return data
}

func (d *Config) init() {
	d.vars.Register(value.NewInt64(&d.Version, version), "version", "", "Configuration file layout version", true, false)
	d.vars.Register(value.NewTime(&d.CreatedAt, time.Now()), "created_at", "", "Configuration file creation time", false, false)
	d.vars.Register(value.NewString(&d.ID, uuid.New().String()), "id", "FOLDWATCH_ID", "ID for this instance", true, false)
	d.vars.Register(value.NewString(&d.Name, haikunator.New().Haikunate()), "name", "FOLDWATCH_NAME", "A human readable name for this instance", false, false)

	// Log
	d.vars.Register(value.NewEnum(&d.Log.Level, "info", []string{"silent", "error", "warn", "info", "debug"}), "log.level", "FOLDWATCH_LOG_LEVEL", "Loglevel: silent, error, warn, info, debug", false, false)
	d.vars.Register(value.NewStringList(&d.Log.Topics, []string{}, ","), "log.topics", "FOLDWATCH_LOG_TOPICS", "Show only selected log topics", false, false)
	d.vars.Register(value.NewInt(&d.Log.MaxLines, 1000), "log.max_lines", "FOLDWATCH_LOG_MAXLINES", "Number of latest log lines to keep in memory", false, false)

	// Access log
	d.vars.Register(value.NewFilePath(&d.AccessLog.Path, "/mnt/nginx-logs/access.log"), "accesslog.path", "FOLDWATCH_ACCESSLOG_PATH", "Path to the access log of the webserver", true, false)
	d.vars.Register(value.NewPositiveInt(&d.AccessLog.TailLines, 100), "accesslog.tail_lines", "FOLDWATCH_ACCESSLOG_TAIL_LINES", "Number of latest lines of the access log to inspect", false, false)

	// Dashboard
	d.vars.Register(value.NewString(&d.Dashboard.Host, "paperless.by.vincent.mahn.ke"), "dashboard.host", "FOLDWATCH_DASHBOARD_HOST", "Host name of the watched dashboard", false, false)
	d.vars.Register(value.NewString(&d.Dashboard.Path, "/dashboard"), "dashboard.path", "FOLDWATCH_DASHBOARD_PATH", "Path of the watched dashboard", false, false)
	d.vars.Register(value.NewGlob(&d.Dashboard.Pattern, ""), "dashboard.pattern", "FOLDWATCH_DASHBOARD_PATTERN", "Glob pattern for the request part of a log line, overrides dashboard.host and dashboard.path", false, false)

	// Check
	d.vars.Register(value.NewInt64(&d.Check.Interval, 30*1000), "check.interval_ms", "FOLDWATCH_CHECK_INTERVAL_MS", "Milliseconds between two checks", false, false)
	d.vars.Register(value.NewCron(&d.Check.Schedule, ""), "check.schedule", "FOLDWATCH_CHECK_SCHEDULE", "Cron expression for the checks, overrides check.interval_ms", false, false)
	d.vars.Register(value.NewInt64(&d.Check.UnpauseThreshold, 30*60*1000), "check.unpause_threshold_ms", "FOLDWATCH_CHECK_UNPAUSE_THRESHOLD_MS", "Milliseconds without dashboard access before folding is resumed", false, false)
	d.vars.Register(value.NewInt64(&d.Check.Timeout, 0), "check.timeout_ms", "FOLDWATCH_CHECK_TIMEOUT_MS", "Max. milliseconds for a single check, 0 for twice the interval", false, false)

	// FAH
	d.vars.Register(value.NewURL(&d.FAH.Address, "ws://host.docker.internal:7396/api/websocket", "ws", "wss"), "fah.address", "FOLDWATCH_FAH_ADDRESS", "WebSocket address of the FAHClient", true, false)
	d.vars.Register(value.NewInt(&d.FAH.GraceDelay, 500), "fah.grace_delay_ms", "FOLDWATCH_FAH_GRACE_DELAY_MS", "Milliseconds to wait after the acknowledgement before closing the connection", false, false)

	// API
	d.vars.Register(value.NewBool(&d.API.Enable, false), "api.enable", "FOLDWATCH_API_ENABLE", "Enable the HTTP status API", false, false)
	d.vars.Register(value.NewAddress(&d.API.Address, ":8080"), "api.address", "FOLDWATCH_API_ADDRESS", "HTTP listening address", false, false)

	// Metrics
	d.vars.Register(value.NewBool(&d.Metrics.Enable, false), "metrics.enable", "FOLDWATCH_METRICS_ENABLE", "Enable prometheus endpoint /metrics", false, false)

	// Debug
	d.vars.Register(value.NewBool(&d.Debug.AutoMaxProcs, false), "debug.auto_max_procs", "FOLDWATCH_DEBUG_AUTOMAXPROCS", "Enable setting GOMAXPROCS automatically", false, false)
	d.vars.Register(value.NewAddress(&d.Debug.AgentAddress, ""), "debug.agent_address", "FOLDWATCH_DEBUG_AGENTADDRESS", "Enable gops agent on this address", false, false)
}

// Merge merges the values of the known environment variables into the configuration
func (d *Config) Merge() {
	d.vars.Merge()
}

// Validate validates the current state of the Config for completeness and sanity. Errors are
// written to the log. Use resetLogs to indicate to reset the logs prior validation.
func (d *Config) Validate(resetLogs bool) {
	if resetLogs {
		d.vars.ResetLogs()
	}

	if d.Version != version {
		d.vars.Log("error", "version", "unknown configuration layout version (have: %d, want: %d)", d.Version, version)

		return
	}

	d.vars.Validate()

	// Individual sanity checks

	if len(d.Check.Schedule) == 0 && d.Check.Interval <= 0 {
		d.vars.Log("error", "check.interval_ms", "must be greater than 0 if no check.schedule is set")
	}

	if d.Check.UnpauseThreshold <= 0 {
		d.vars.Log("error", "check.unpause_threshold_ms", "must be greater than 0")
	}

	if len(d.Dashboard.Pattern) == 0 && len(d.Dashboard.Host)+len(d.Dashboard.Path) == 0 {
		d.vars.Log("error", "dashboard.pattern", "either dashboard.pattern or dashboard.host and dashboard.path must be set")
	}

	if d.API.Enable && len(d.API.Address) == 0 {
		d.vars.Log("error", "api.address", "an address is required if the API is enabled")
	}

	if d.Metrics.Enable && !d.API.Enable {
		d.vars.Log("warn", "metrics.enable", "metrics are only available if api.enable is set")
	}
}

// Messages calls for each log entry the provided callback. The level has the values 'error', 'warn', or 'info'.
// The name is the name of the configuration value, e.g. 'api.address'
func (d *Config) Messages(logger func(level string, v vars.Variable, message string)) {
	d.vars.Messages(logger)
}

// HasErrors returns whether there are some error messages in the log.
func (d *Config) HasErrors() bool {
	return d.vars.HasErrors()
}

// Overrides returns a list of configuration value names that have been overriden by an environment variable.
func (d *Config) Overrides() []string {
	return d.vars.Overrides()
}

// DashboardPattern returns the glob pattern a log line has to match in
// order to count as a dashboard access.
func (d *Config) DashboardPattern() string {
	if len(d.Dashboard.Pattern) != 0 {
		// A plain string matches anywhere in the request
		if !glob.IsPattern(d.Dashboard.Pattern) {
			return glob.Contains(d.Dashboard.Pattern)
		}

		return d.Dashboard.Pattern
	}

	return glob.Contains(d.Dashboard.Host + d.Dashboard.Path)
}

// CheckInterval returns the time between two checks.
func (d *Config) CheckInterval() time.Duration {
	return time.Duration(d.Check.Interval) * time.Millisecond
}

// CheckTimeout returns the max. duration of a single check.
func (d *Config) CheckTimeout() time.Duration {
	if d.Check.Timeout > 0 {
		return time.Duration(d.Check.Timeout) * time.Millisecond
	}

	return 2 * d.CheckInterval()
}

func (d *Config) UnpauseThreshold() time.Duration {
	return time.Duration(d.Check.UnpauseThreshold) * time.Millisecond
}

func (d *Config) GraceDelay() time.Duration {
	return time.Duration(d.FAH.GraceDelay) * time.Millisecond
}

func copyStrings(src []string) []string {
	if src == nil {
		return nil
	}

	dst := make([]string, len(src))
	for i, s := range src {
		dst[i] = s
	}

	return dst
}
