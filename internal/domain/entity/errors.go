package entity

import "fmt"

// InvalidInputError reports an input path that cannot be used to start a
// reconstruction: not a supported video file, not an image directory, or a
// directory without any images in it.
type InvalidInputError struct {
	Path   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Path, e.Reason)
}

// FrameExtractionError reports a failed frame extraction: ffmpeg exited
// non-zero or produced no frames at all.
type FrameExtractionError struct {
	Video  string
	Reason string
	Output string
}

func (e *FrameExtractionError) Error() string {
	return fmt.Sprintf("frame extraction from %q failed: %s", e.Video, e.Reason)
}

// StageExecutionError reports a pipeline stage whose external invocation
// exited non-zero. Output carries the tool's combined stdout/stderr so the
// failure cause is visible even when the run was not verbose.
type StageExecutionError struct {
	Stage    string
	ExitCode int
	Output   string
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stage %s failed with exit code %d", e.Stage, e.ExitCode)
}

// EnvironmentError reports a required external tool missing from PATH.
type EnvironmentError struct {
	Tool string
	Err  error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("required tool %q not found: %v", e.Tool, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }
