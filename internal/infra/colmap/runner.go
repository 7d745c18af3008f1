// Package colmap translates pipeline stages into invocations of the
// containerized COLMAP suite. The working directory is mounted at /workspace
// and every path handed to COLMAP is relative to it, so the artifact layout
// on the host matches what the stages see inside the container.
package colmap

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/port"
)

// Runner implements port.StageRunner on top of docker run.
type Runner struct {
	runner       port.ProcessRunner
	dockerBin    string
	image        string
	gpus         string
	maxImageSize int
	workDir      string
	logger       *zap.Logger
}

func NewRunner(runner port.ProcessRunner, cfg entity.PipelineConfig, workDir string, logger *zap.Logger) *Runner {
	return &Runner{
		runner:       runner,
		dockerBin:    cfg.DockerBinary,
		image:        cfg.DockerImage,
		gpus:         cfg.GPUs,
		maxImageSize: cfg.MaxImageSize,
		workDir:      workDir,
		logger:       logger,
	}
}

// CheckEnvironment verifies the container runtime binary is reachable before
// any stage is attempted.
func (r *Runner) CheckEnvironment() error {
	_, err := r.runner.LookPath(r.dockerBin)
	return err
}

func (r *Runner) RunStage(ctx context.Context, id entity.StageID) (*port.RunResult, error) {
	op, opArgs, err := stageInvocation(id, r.maxImageSize)
	if err != nil {
		return nil, err
	}

	args := []string{"run", "--rm"}
	if r.gpus != "" {
		args = append(args, "--gpus", r.gpus)
	}
	args = append(args,
		"-v", r.workDir+":/workspace",
		"-w", "/workspace",
		r.image,
		"colmap", op,
	)
	args = append(args, opArgs...)

	r.logger.Debug("running colmap stage",
		zap.String("stage", id.String()),
		zap.String("op", op),
		zap.String("image", r.image),
	)

	return r.runner.Run(ctx, port.Command{Name: r.dockerBin, Args: args})
}

// stageInvocation maps a containerized stage to its COLMAP sub-command and
// arguments, all relative to the mounted working directory.
func stageInvocation(id entity.StageID, maxImageSize int) (string, []string, error) {
	switch id {
	case entity.StageFeatureExtraction:
		return "feature_extractor", []string{
			"--database_path", "database.db",
			"--image_path", ".",
		}, nil
	case entity.StageFeatureMatching:
		return "exhaustive_matcher", []string{
			"--database_path", "database.db",
		}, nil
	case entity.StageSparseReconstruction:
		return "mapper", []string{
			"--database_path", "database.db",
			"--image_path", ".",
			"--output_path", "sparse/",
		}, nil
	case entity.StageUndistortion:
		return "image_undistorter", []string{
			"--image_path", ".",
			"--input_path", "sparse/0",
			"--output_path", "dense",
			"--output_type", "COLMAP",
			"--max_image_size", strconv.Itoa(maxImageSize),
		}, nil
	case entity.StagePatchMatchStereo:
		return "patch_match_stereo", []string{
			"--workspace_path", "dense",
			"--workspace_format", "COLMAP",
			"--PatchMatchStereo.geom_consistency", "true",
		}, nil
	case entity.StageStereoFusion:
		return "stereo_fusion", []string{
			"--workspace_path", "dense",
			"--workspace_format", "COLMAP",
			"--input_type", "geometric",
			"--output_path", "dense/fused.ply",
		}, nil
	case entity.StageMeshing:
		return "poisson_mesher", []string{
			"--input_path", "dense/fused.ply",
			"--output_path", "dense/meshed-poisson.ply",
		}, nil
	}
	return "", nil, fmt.Errorf("stage %s has no container invocation", id)
}
