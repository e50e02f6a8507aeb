package harness

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultRunner is looked up on PATH when no runner is configured.
const DefaultRunner = "simbricks-run"

// RunnerEnv names the environment variable that overrides the runner.
const RunnerEnv = "SIMBENCH_RUNNER"

// ResolveRunner returns the runner to invoke: explicit if set, then
// $SIMBENCH_RUNNER, then DefaultRunner found on PATH.
func ResolveRunner(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if env := os.Getenv(RunnerEnv); env != "" {
		return env, nil
	}

	path, err := exec.LookPath(DefaultRunner)
	if err != nil {
		return "", fmt.Errorf(
			"no runner configured: set --runner or %s, or put %s on PATH: %w",
			RunnerEnv, DefaultRunner, err,
		)
	}

	return path, nil
}

// CommandConfig holds the resolved command and extra leading arguments
// needed to run a runner.
type CommandConfig struct {
	Binary    string
	ExtraArgs []string
	Env       []string
}

// WrapCommand returns the exec configuration for a runner. Python entry
// points are started through python3; anything else is executed directly.
func WrapCommand(runner string) CommandConfig {
	if strings.HasSuffix(runner, ".py") {
		return CommandConfig{
			Binary:    "python3",
			ExtraArgs: []string{runner},
			Env:       []string{"PYTHONUNBUFFERED=1"},
		}
	}

	return CommandConfig{Binary: runner}
}
