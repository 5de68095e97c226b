// Package runner executes the external location programs and captures their
// output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/tremorlab/seispick/internal/pipeline"
)

// ExecRunner runs programs as child processes. A non-zero exit status is not
// an error here; callers inspect the exit code because some programs use it
// to report domain outcomes.
type ExecRunner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, prog pipeline.Program) (pipeline.Result, error) {
	cmd := exec.CommandContext(ctx, prog.Path, prog.Args...)
	cmd.Dir = prog.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if prog.Stdin != "" {
		cmd.Stdin = bytes.NewBufferString(prog.Stdin)
	}

	r.logger.Info("running external program", "program", prog.Name, "path", prog.Path, "dir", prog.Dir)
	err := cmd.Run()
	result := pipeline.Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.logger.Warn("external program exited non-zero",
			"program", prog.Name, "exit_code", result.ExitCode)
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("run %s: %w", prog.Name, err)
	}
	return result, nil
}
