package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/weiihann/simbench/harness"
)

func TestGenerateAllSucceeded(t *testing.T) {
	results := []harness.Result{
		{
			Experiment: "qemu-nopaxos-swseq",
			Run:        1,
			SimMinutes: 2,
			WallTime:   90 * time.Second,
			Success:    true,
		},
		{
			Experiment: "qemu-nopaxos-hwseq",
			Run:        1,
			SimMinutes: 4,
			WallTime:   3 * time.Minute,
			Success:    true,
		},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, results); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "all succeeded") {
		t.Error("expected 'all succeeded' when every run succeeded")
	}
	if !strings.Contains(output, "qemu-nopaxos-swseq") {
		t.Error("expected qemu-nopaxos-swseq in output")
	}
	if !strings.Contains(output, "2.00x") {
		t.Error("expected 2.00x slowdown for the hwseq run (twice as slow)")
	}
	if !strings.Contains(output, "90.00s") {
		t.Error("expected wall time 90.00s")
	}
}

func TestGenerateFailedRuns(t *testing.T) {
	results := []harness.Result{
		{Experiment: "a", Run: 1, SimMinutes: 1, Success: true},
		{Experiment: "b", Run: 3, SimMinutes: 1, Success: false, Path: "out/b-3.json"},
	}

	var buf bytes.Buffer
	if err := Generate(&buf, results); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "1 FAILED") {
		t.Error("expected failure count")
	}
	if !strings.Contains(output, "out/b-3.json") {
		t.Error("expected failed run path in details")
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, nil)
	if err == nil {
		t.Error("expected error for empty results")
	}
}

func TestGenerateJSON(t *testing.T) {
	results := []harness.Result{
		{Experiment: "qemu-nopaxos-swseq", Run: 1, SimMinutes: 2, Success: true},
	}

	var buf bytes.Buffer
	if err := GenerateJSON(&buf, results); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var parsed []harness.Result
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(parsed) != 1 {
		t.Fatalf("expected 1 result, got %d", len(parsed))
	}
	if parsed[0].Experiment != "qemu-nopaxos-swseq" {
		t.Errorf("experiment = %q, want qemu-nopaxos-swseq", parsed[0].Experiment)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.0s"},
		{0.5, "30.0s"},
		{1, "1.00min"},
		{2.5, "2.50min"},
	}

	for _, tt := range tests {
		got := formatMinutes(tt.input)
		if got != tt.want {
			t.Errorf("formatMinutes(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "-"},
		{500 * time.Millisecond, "500ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
		{time.Minute, "60.00s"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.input)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
