// Package harness drives the external simulation runner for one experiment
// at a time and collects the timing it records.
package harness

import "time"

// Result holds the outcome of a single experiment run.
type Result struct {
	Experiment string        `json:"experiment"`
	Run        int           `json:"run"`
	SimMinutes float64       `json:"sim_minutes"`
	WallTime   time.Duration `json:"wall_time_ns"`
	Success    bool          `json:"success"`
	Path       string        `json:"path"`
}
