package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/simbench/experiment"
	"github.com/weiihann/simbench/harness"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := newRootCmd(logger, new(slog.LevelVar))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "no_simb-gt-sleep-1.json"),
		[]byte(`{"start_time": 0, "end_time": 120}`), 0o644))

	out, err := execute(t, "report", dir)
	require.NoError(t, err)

	assert.Equal(t,
		"mode  sleep  busy\nno_simb-gt 2.0 \nnoTraf-gt-ib-sw  \n", out)
}

func TestReportCommandFormats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "a-x-2.json"),
		[]byte(`{"start_time": 0, "end_time": 30}`), 0o644))

	out, err := execute(t, "report", dir,
		"--modes", "a", "--cmds", "x", "--run", "2", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| a | 0.5 |")

	out, err = execute(t, "report", dir,
		"--modes", "a", "--cmds", "x", "--run", "2", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"sim_minutes": 0.5`)

	_, err = execute(t, "report", dir, "--format", "xml")
	assert.Error(t, err)
}

func TestReportCommandPromTextfile(t *testing.T) {
	dir := t.TempDir()
	prom := filepath.Join(t.TempDir(), "simbench.prom")

	_, err := execute(t, "report", dir, "--prom-textfile", prom)
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simbench_result_missing")
}

func TestReportCommandMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "no_simb-gt-busy-1.json"), []byte(`{}`), 0o644))

	_, err := execute(t, "report", dir)
	assert.Error(t, err)
}

func TestReportCommandNeedsDir(t *testing.T) {
	t.Setenv(envOutDir, "")

	_, err := execute(t, "report")
	assert.Error(t, err)
}

func TestExperimentsList(t *testing.T) {
	out, err := execute(t, "experiments", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "qemu-nopaxos-swseq\t1 networks, 4 nics, 4 hosts")
}

func TestExperimentsShowAndValidate(t *testing.T) {
	out, err := execute(t, "experiments", "show", "qemu-nopaxos-swseq")
	require.NoError(t, err)
	assert.Contains(t, out, "name: qemu-nopaxos-swseq")

	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	_, err = execute(t, "experiments", "validate", path, "qemu-nopaxos-swseq")
	require.NoError(t, err)

	out, err = execute(t, "experiments", "show", path, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "qemu-nopaxos-swseq"`)

	_, err = execute(t, "experiments", "show", path, "--format", "toml")
	assert.Error(t, err)
}

func TestExperimentsValidateRejects(t *testing.T) {
	e := experiment.NOPaxosSwSeq()
	e.Hosts[3].Wait = false

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, experiment.Save(path, e))

	_, err := execute(t, "experiments", "validate", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, experiment.ErrInvalid)

	_, err = execute(t, "experiments", "validate", "no-such-experiment")
	assert.ErrorIs(t, err, experiment.ErrUnknown)
}

func TestSweepCommand(t *testing.T) {
	out, err := execute(t, "sweep", "--dir", "res")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"name":"no_simb-gt-sleep"`)
	assert.Contains(t, lines[3], `"name":"noTraf-gt-ib-sw-busy"`)
}

func TestRunRequiresExperiments(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)

	_, err = execute(t, "run", "--experiments", "unknown", "--runner", "/bin/true")
	assert.ErrorIs(t, err, experiment.ErrUnknown)

	_, err = execute(t, "run", "--experiments", "qemu-nopaxos-swseq", "--run", "0")
	assert.Error(t, err)
}

func TestLoadExperimentsRejectsDuplicates(t *testing.T) {
	_, err := loadExperiments(runConfig{
		experiments: []string{"qemu-nopaxos-swseq", "qemu-nopaxos-swseq"},
	})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "absent.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path,
		[]byte("SIMBENCH_TEST_DOTENV=from-file\n"), 0o644))

	t.Setenv("SIMBENCH_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("SIMBENCH_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("SIMBENCH_TEST_DOTENV"))
}

func TestEnvDuration(t *testing.T) {
	t.Setenv(envTimeout, "")
	d, err := envDuration(envTimeout)
	require.NoError(t, err)
	assert.Zero(t, d)

	t.Setenv(envTimeout, "45m")
	d, err = envDuration(envTimeout)
	require.NoError(t, err)
	assert.Equal(t, "45m0s", d.String())

	t.Setenv(envTimeout, "later")
	_, err = envDuration(envTimeout)
	assert.Error(t, err)
}

func fakeBatch(runs *[]int) func(int) ([]harness.Result, error) {
	return func(run int) ([]harness.Result, error) {
		*runs = append(*runs, run)

		return []harness.Result{{
			Experiment: "fake",
			Run:        run,
			SimMinutes: 2,
			Success:    true,
		}}, nil
	}
}

// Sub-second @every delays are rounded up to one second by the cron parser.
func TestRunScheduled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var (
		out  bytes.Buffer
		runs []int
	)

	err := runScheduled(ctx, logger, runConfig{
		schedule: "@every 1s",
		run:      3,
		repeat:   2,
		out:      &out,
	}, fakeBatch(&runs))
	require.NoError(t, err)

	assert.Equal(t, []int{3, 4}, runs)
	assert.Equal(t, 2, strings.Count(out.String(), "## Experiment Results"))
	assert.NoError(t, ctx.Err(), "schedule should stop at --repeat")
}

func TestRunScheduledInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var runs []int
	batch := fakeBatch(&runs)

	err := runScheduled(ctx, logger, runConfig{
		schedule: "@every 1s",
		run:      1,
		repeat:   0,
		out:      io.Discard,
	}, func(run int) ([]harness.Result, error) {
		defer cancel()

		return batch(run)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, runs)
}

func TestRunScheduledBadExpression(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var runs []int

	err := runScheduled(context.Background(), logger, runConfig{
		schedule: "every now and then",
		run:      1,
		repeat:   1,
		out:      io.Discard,
	}, fakeBatch(&runs))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse schedule")
	assert.Empty(t, runs)
}
