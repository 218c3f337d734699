package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type uptimeCollector struct {
	instance string
	started  time.Time

	uptimeDesc *prometheus.Desc
}

func NewUptimeCollector(instance string, started time.Time) prometheus.Collector {
	return &uptimeCollector{
		instance: instance,
		started:  started,
		uptimeDesc: prometheus.NewDesc(
			"uptime_seconds",
			"Number of seconds foldwatch is up",
			[]string{"instance"}, nil),
	}
}

func (c *uptimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.uptimeDesc
}

func (c *uptimeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.uptimeDesc, prometheus.CounterValue, time.Since(c.started).Seconds(), c.instance)
}
