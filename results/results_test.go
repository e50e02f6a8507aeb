package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestResultPath(t *testing.T) {
	got := ResultPath("out", "no_simb-gt", "sleep", 1)
	assert.Equal(t, filepath.Join("out", "no_simb-gt-sleep-1.json"), got)

	got = ExperimentPath("out", "qemu-nopaxos-swseq", 3)
	assert.Equal(t, filepath.Join("out", "qemu-nopaxos-swseq-3.json"), got)
}

func TestParseSimTime(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m-c-1.json",
		`{"exp_name": "m-c", "start_time": 0, "end_time": 120, "success": true}`)

	got, ok, err := ParseSimTime(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Minutes())
	assert.Equal(t, "2.0", got.String())
}

func TestParseSimTimeMissingFile(t *testing.T) {
	got, ok, err := ParseSimTime(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestParseSimTimeErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing bool
	}{
		{name: "malformed", body: `{"start_time": `},
		{name: "not json", body: `hello`},
		{name: "no start", body: `{"end_time": 10}`, missing: true},
		{name: "no end", body: `{"start_time": 10}`, missing: true},
		{name: "string timestamp", body: `{"start_time": "0", "end_time": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "r.json", tt.body)

			_, ok, err := ParseSimTime(path)
			require.Error(t, err)
			assert.False(t, ok)

			if tt.missing {
				assert.ErrorIs(t, err, ErrMissingField)
			}
		})
	}
}

func TestDecodeKeepsOptionalFields(t *testing.T) {
	out, err := Decode(strings.NewReader(`{
		"exp_name": "qemu-nopaxos-swseq",
		"metadata": {"host": "a"},
		"start_time": 1600000000.5,
		"end_time": 1600000090.5,
		"success": false,
		"sims": {"host.replica.0": {"class": "QemuHost"}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "qemu-nopaxos-swseq", out.ExpName)
	require.NotNil(t, out.Success)
	assert.False(t, *out.Success)
	assert.Equal(t, "a", out.Metadata["host"])
	assert.Equal(t, 1.5, out.SimTime().Minutes())
}

func TestSimTimeString(t *testing.T) {
	tests := []struct {
		in   SimTime
		want string
	}{
		{0, "0.0"},
		{2, "2.0"},
		{1.5, "1.5"},
		{100.0 / 60, "1.6666666666666667"},
		{-0.5, "-0.5"},
		{0.0001, "0.0001"},
		{0.000015, "1.5e-05"},
		{1e16, "1e+16"},
		{123456789, "123456789.0"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("SimTime(%v).String() = %q, want %q",
				float64(tt.in), got, tt.want)
		}
	}
}
