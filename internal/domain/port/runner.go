package port

import "context"

// Command is one external-process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// RunResult is the observed outcome of a finished process. Output holds the
// combined stdout/stderr when the runner captured it; a streaming runner
// leaves it empty.
type RunResult struct {
	ExitCode int
	Output   []byte
}

// ProcessRunner starts an external process and waits for it. A non-zero exit
// is not an error: it comes back in RunResult and the caller decides what it
// means. Errors are reserved for failures to run at all (missing binary,
// cancelled context).
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) (*RunResult, error)
	LookPath(name string) (string, error)
}
