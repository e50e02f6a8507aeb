// Package report formats experiment timings into summary tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/weiihann/simbench/harness"
)

// Generate writes a markdown table summarising harness runs.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fastest := findFastest(results)
	failed := countFailed(results)

	// Header.
	fmt.Fprintln(w, "## Experiment Results")
	fmt.Fprintln(w)

	if failed == 0 {
		fmt.Fprintln(w, "Runs: **all succeeded**")
	} else {
		fmt.Fprintf(w, "Runs: **%d FAILED**\n", failed)

		for _, r := range results {
			if !r.Success {
				fmt.Fprintf(w, "  - %s (run %d): %s\n", r.Experiment, r.Run, r.Path)
			}
		}
	}

	fmt.Fprintln(w)

	// Table header.
	fmt.Fprintln(w, "| Experiment | Run | Sim Time | Wall Time | Slowdown |")
	fmt.Fprintln(w, "|------------|-----|----------|-----------|----------|")

	for _, r := range results {
		slowdown := 1.0
		if fastest > 0 && r.SimMinutes > 0 {
			slowdown = r.SimMinutes / fastest
		}

		fmt.Fprintf(w, "| %s | %d | %s | %s | %.2fx |\n",
			r.Experiment,
			r.Run,
			formatMinutes(r.SimMinutes),
			formatDuration(r.WallTime),
			slowdown,
		)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

func countFailed(results []harness.Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}

	return n
}

func findFastest(results []harness.Result) float64 {
	fastest := math.Inf(1)
	for _, r := range results {
		if r.SimMinutes > 0 && r.SimMinutes < fastest {
			fastest = r.SimMinutes
		}
	}

	if math.IsInf(fastest, 1) {
		return 0
	}

	return fastest
}

func formatMinutes(m float64) string {
	if m < 1 {
		return fmt.Sprintf("%.1fs", m*60)
	}

	return fmt.Sprintf("%.2fmin", m)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}

	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	return fmt.Sprintf("%.2fs", d.Seconds())
}
