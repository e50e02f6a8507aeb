package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var cellLabels = []string{"mode", "cmd"}

type gauges struct {
	registry *prometheus.Registry
	simTime  *prometheus.GaugeVec
	missing  *prometheus.GaugeVec
}

func newGauges(rows []Row) (*gauges, error) {
	g := &gauges{
		registry: prometheus.NewRegistry(),
		simTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "simbench",
			Name:      "sim_time_minutes",
			Help:      "Simulated time of a benchmark cell, in minutes.",
		}, cellLabels),
		missing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "simbench",
			Name:      "result_missing",
			Help:      "1 if the result file of a benchmark cell was absent.",
		}, cellLabels),
	}

	for _, c := range []prometheus.Collector{g.simTime, g.missing} {
		if err := g.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	for _, r := range rows {
		for _, c := range r.Cells {
			if c.OK {
				g.simTime.WithLabelValues(r.Mode, c.Cmd).Set(c.SimTime.Minutes())
				g.missing.WithLabelValues(r.Mode, c.Cmd).Set(0)
			} else {
				g.missing.WithLabelValues(r.Mode, c.Cmd).Set(1)
			}
		}
	}

	return g, nil
}

// WriteTextfile writes the cells as Prometheus gauges in the text
// exposition format, suitable for node_exporter's textfile collector.
func WriteTextfile(path string, rows []Row) error {
	g, err := newGauges(rows)
	if err != nil {
		return err
	}

	if err := prometheus.WriteToTextfile(path, g.registry); err != nil {
		return fmt.Errorf("write textfile %s: %w", path, err)
	}

	return nil
}
