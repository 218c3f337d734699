package prometheus

import (
	"github.com/datarhei/foldwatch/activity"
	"github.com/datarhei/foldwatch/watcher"

	"github.com/prometheus/client_golang/prometheus"
)

type watcherCollector struct {
	instance string
	watcher  watcher.Watcher

	cyclesDesc     *prometheus.Desc
	skippedDesc    *prometheus.Desc
	commandsDesc   *prometheus.Desc
	lastAccessDesc *prometheus.Desc
	pausedDesc     *prometheus.Desc
}

func NewWatcherCollector(instance string, w watcher.Watcher) prometheus.Collector {
	return &watcherCollector{
		instance: instance,
		watcher:  w,
		cyclesDesc: prometheus.NewDesc(
			"watcher_cycles_total",
			"Number of finished checks by outcome",
			[]string{"instance", "outcome"}, nil),
		skippedDesc: prometheus.NewDesc(
			"watcher_skipped_total",
			"Number of checks skipped because the previous one was still running",
			[]string{"instance"}, nil),
		commandsDesc: prometheus.NewDesc(
			"watcher_commands_total",
			"Number of acknowledged commands by command",
			[]string{"instance", "command"}, nil),
		lastAccessDesc: prometheus.NewDesc(
			"watcher_last_access_timestamp_seconds",
			"Unix time of the last known dashboard access",
			[]string{"instance"}, nil),
		pausedDesc: prometheus.NewDesc(
			"watcher_paused",
			"Whether the last acknowledged command was pause",
			[]string{"instance"}, nil),
	}
}

func (c *watcherCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cyclesDesc
	ch <- c.skippedDesc
	ch <- c.commandsDesc
	ch <- c.lastAccessDesc
	ch <- c.pausedDesc
}

func (c *watcherCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.watcher.Stats()

	for _, outcome := range []string{watcher.OutcomeOK, watcher.OutcomeLogError, watcher.OutcomeSendError} {
		ch <- prometheus.MustNewConstMetric(c.cyclesDesc, prometheus.CounterValue, float64(stats.Cycles[outcome]), c.instance, outcome)
	}

	ch <- prometheus.MustNewConstMetric(c.skippedDesc, prometheus.CounterValue, float64(stats.Skipped), c.instance)

	for _, cmd := range []activity.Command{activity.Fold, activity.Pause} {
		ch <- prometheus.MustNewConstMetric(c.commandsDesc, prometheus.CounterValue, float64(stats.Commands[cmd.String()]), c.instance, cmd.String())
	}

	if last := c.watcher.LastAccess(); last != nil {
		ch <- prometheus.MustNewConstMetric(c.lastAccessDesc, prometheus.GaugeValue, float64(last.Unix()), c.instance)
	}

	if r, ok := c.watcher.Last(); ok && r.Outcome == watcher.OutcomeOK {
		paused := 0.0
		if r.Command == activity.Pause {
			paused = 1
		}

		ch <- prometheus.MustNewConstMetric(c.pausedDesc, prometheus.GaugeValue, paused, c.instance)
	}
}
