// Package results reads the JSON output files a simulation run leaves in
// its output directory and derives the simulated time from them.
package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingField is returned when a run output lacks a required key.
var ErrMissingField = errors.New("missing field")

// Output is the part of a run output file this package understands. Only
// the timestamps are required; everything else the runner writes is ignored.
type Output struct {
	ExpName   string         `json:"exp_name,omitempty"`
	StartTime float64        `json:"start_time"`
	EndTime   float64        `json:"end_time"`
	Success   *bool          `json:"success,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SimTime returns the elapsed time between the two timestamps.
func (o *Output) SimTime() SimTime {
	return SimTime((o.EndTime - o.StartTime) / 60)
}

type rawOutput struct {
	ExpName   string         `json:"exp_name"`
	StartTime *float64       `json:"start_time"`
	EndTime   *float64       `json:"end_time"`
	Success   *bool          `json:"success"`
	Metadata  map[string]any `json:"metadata"`
}

// ResultPath returns the output file of one (mode, cmd) cell of a run:
// <dir>/<mode>-<cmd>-<run>.json.
func ResultPath(dir, mode, cmd string, run int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%d.json", mode, cmd, run))
}

// ExperimentPath returns the output file the runner writes for a named
// experiment: <dir>/<name>-<run>.json.
func ExperimentPath(dir, name string, run int) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d.json", name, run))
}

// Decode parses a run output from r.
func Decode(r io.Reader) (*Output, error) {
	var raw rawOutput
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	if raw.StartTime == nil {
		return nil, fmt.Errorf("%w: start_time", ErrMissingField)
	}
	if raw.EndTime == nil {
		return nil, fmt.Errorf("%w: end_time", ErrMissingField)
	}

	return &Output{
		ExpName:   raw.ExpName,
		StartTime: *raw.StartTime,
		EndTime:   *raw.EndTime,
		Success:   raw.Success,
		Metadata:  raw.Metadata,
	}, nil
}

// Load reads and parses the run output at path. A missing file yields an
// error matching fs.ErrNotExist.
func Load(path string) (*Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return out, nil
}

// ParseSimTime returns the simulated time recorded in the file at path.
// ok is false, with no error, when the file does not exist. Unreadable
// files, malformed JSON and missing keys are errors.
func ParseSimTime(path string) (t SimTime, ok bool, err error) {
	out, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return out.SimTime(), true, nil
}

// SimTime is a simulated duration in minutes.
type SimTime float64

// Minutes returns the value as a float.
func (t SimTime) Minutes() float64 {
	return float64(t)
}

// String formats the minutes as the shortest decimal that round-trips,
// always carrying a fractional part ("2.0", "1.5"). Very large and very
// small magnitudes use exponent notation ("1e+16", "1.5e-05").
func (t SimTime) String() string {
	f := float64(t)

	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
