package scorecard

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"
)

// Runner executes the probe runner with the given arguments.
//
// Implementations must stop the process when ctx is done.
type Runner interface {
	Run(ctx context.Context, args []string) (stdout, stderr []byte, err error)
}

// RunnerFunc adapts a function to [Runner].
type RunnerFunc func(ctx context.Context, args []string) ([]byte, []byte, error)

func (f RunnerFunc) Run(ctx context.Context, args []string) ([]byte, []byte, error) {
	return f(ctx, args)
}

// waitDelay bounds how long a killed runner may keep its output pipes open.
const waitDelay = 5 * time.Second

// ExecRunner runs the binary at Path as a child process.
type ExecRunner struct {
	Path string
	// Env is appended to the inherited environment.
	Env []string
}

// Run starts the runner, captures both output streams and waits for it.
// When ctx is done the process is killed.
func (r *ExecRunner) Run(ctx context.Context, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Env = append(os.Environ(), r.Env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var _ Runner = (*ExecRunner)(nil)
