package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/port"
)

// ExecRunner runs external processes with os/exec. In verbose mode the
// child's output streams straight to the terminal; otherwise it is buffered
// so the driver can surface it only on failure.
type ExecRunner struct {
	verbose bool
	logger  *zap.Logger
}

func NewExecRunner(verbose bool, logger *zap.Logger) *ExecRunner {
	return &ExecRunner{verbose: verbose, logger: logger}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &entity.EnvironmentError{Tool: name, Err: err}
	}
	return path, nil
}

func (r *ExecRunner) Run(ctx context.Context, cmd port.Command) (*port.RunResult, error) {
	if r.verbose {
		r.logger.Info("running command", zap.String("command", cmd.Name+" "+strings.Join(cmd.Args, " ")))
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}

	var output []byte
	var err error
	if r.verbose {
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		err = c.Run()
	} else {
		output, err = c.CombinedOutput()
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			return &port.RunResult{ExitCode: exitErr.ExitCode(), Output: output}, nil
		case errors.Is(err, exec.ErrNotFound):
			return nil, &entity.EnvironmentError{Tool: cmd.Name, Err: err}
		case ctx.Err() != nil:
			// The in-flight process was killed along with the cancellation.
			return nil, fmt.Errorf("command %s interrupted: %w", cmd.Name, ctx.Err())
		default:
			return nil, fmt.Errorf("run %s: %w", cmd.Name, err)
		}
	}

	return &port.RunResult{ExitCode: 0, Output: output}, nil
}
