package port

import (
	"context"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
)

// StageRunner executes one containerized pipeline stage against the working
// directory. Like ProcessRunner, a non-zero exit is reported in the result,
// not as an error.
type StageRunner interface {
	// CheckEnvironment verifies the backing tool is available before any
	// stage runs.
	CheckEnvironment() error
	RunStage(ctx context.Context, id entity.StageID) (*RunResult, error)
}
