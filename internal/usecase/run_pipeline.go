package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/port"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/workspace"
)

// Pipeline drives the reconstruction stages in order against one working
// directory. Stages whose output already exists are skipped, the first
// failure aborts the run, and whatever completed stays on disk so the next
// invocation resumes where this one stopped.
type Pipeline struct {
	cfg       entity.PipelineConfig
	workDir   string
	kind      entity.InputKind
	extractor port.FrameExtractor
	stages    port.StageRunner
	logger    *zap.Logger
}

func NewPipeline(
	cfg entity.PipelineConfig,
	workDir string,
	kind entity.InputKind,
	extractor port.FrameExtractor,
	stages port.StageRunner,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		workDir:   workDir,
		kind:      kind,
		extractor: extractor,
		stages:    stages,
		logger:    logger,
	}
}

// Run executes the pipeline and returns the run record alongside the first
// error, if any. The record is returned even on failure so callers can see
// which stage broke.
func (p *Pipeline) Run(ctx context.Context) (*entity.Run, error) {
	run := entity.NewRun(p.cfg.InputPath, p.workDir, p.kind)
	log := p.logger.With(zap.String("run_id", run.ID.String()))

	log.Info("starting reconstruction pipeline",
		zap.String("input", p.cfg.InputPath),
		zap.String("work_dir", p.workDir),
		zap.String("kind", string(p.kind)),
		zap.String("docker_image", p.cfg.DockerImage),
	)

	err := p.execute(ctx, run, log)
	run.Finish()
	p.writeReport(run, log)

	if err != nil {
		return run, err
	}

	log.Info("pipeline completed successfully",
		zap.Duration("elapsed", run.Elapsed()),
	)
	p.logOutputs(log)
	return run, nil
}

func (p *Pipeline) execute(ctx context.Context, run *entity.Run, log *zap.Logger) error {
	// Snapshot every completion predicate before anything runs. Skips must
	// reflect only artifacts left by previous runs: a stage executed in this
	// run writes artifacts too (feature extraction alone grows database.db
	// past the matching threshold), and evaluating the predicates live would
	// let those skip the very next stage.
	completed := make(map[entity.StageID]bool)
	for _, id := range entity.AllStages() {
		if id != entity.StageFrameExtraction {
			completed[id] = id.Completed(p.workDir)
		}
	}

	if err := p.runFrameExtraction(ctx, run, log); err != nil {
		return err
	}

	imageCount, err := workspace.ValidateImageDir(p.workDir)
	if err != nil {
		return err
	}
	log.Info("working directory validated", zap.Int("images", imageCount))

	if err := p.stages.CheckEnvironment(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(p.workDir, "sparse"), 0755); err != nil {
		return fmt.Errorf("create sparse directory: %w", err)
	}

	for _, id := range entity.AllStages() {
		if id == entity.StageFrameExtraction {
			continue
		}
		if err := p.runContainerStage(ctx, run, id, completed[id], log); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runFrameExtraction(ctx context.Context, run *entity.Run, log *zap.Logger) error {
	rec := run.Stage(entity.StageFrameExtraction)

	if p.kind == entity.InputImageDirectory {
		return rec.MarkSkipped("input is an image directory")
	}

	// Mirror the adapter's own precondition so a resumed run records the
	// stage as skipped without touching the adapter at all.
	if !p.cfg.ForceExtract && len(workspace.ListImages(p.workDir)) > 0 {
		log.Info("frames already present, skipping extraction",
			zap.String("dir", p.workDir),
		)
		return rec.MarkSkipped("frames already present")
	}

	if err := rec.MarkRunning(); err != nil {
		return err
	}
	res, err := p.extractor.ExtractFrames(ctx, p.cfg.InputPath, p.workDir)
	if err != nil {
		_ = rec.MarkFailed(err.Error())
		p.reportFailure(entity.StageFrameExtraction, err, log)
		return err
	}

	log.Info("frame extraction finished", zap.Int("frames", res.FrameCount))
	return rec.MarkDone()
}

func (p *Pipeline) runContainerStage(ctx context.Context, run *entity.Run, id entity.StageID, alreadyDone bool, log *zap.Logger) error {
	rec := run.Stage(id)

	if excluded, reason := p.cfg.StageExcluded(id); excluded {
		log.Debug("stage excluded", zap.String("stage", id.String()), zap.String("reason", reason))
		return rec.MarkSkipped(reason)
	}

	if alreadyDone {
		log.Info("stage output already present, skipping", zap.String("stage", id.String()))
		return rec.MarkSkipped("output already present")
	}

	log.Info("running stage", zap.String("stage", id.String()))
	if err := rec.MarkRunning(); err != nil {
		return err
	}

	res, err := p.stages.RunStage(ctx, id)
	if err != nil {
		_ = rec.MarkFailed(err.Error())
		p.reportFailure(id, err, log)
		return err
	}
	if res.ExitCode != 0 {
		stageErr := &entity.StageExecutionError{
			Stage:    id.String(),
			ExitCode: res.ExitCode,
			Output:   strings.TrimSpace(string(res.Output)),
		}
		_ = rec.MarkFailed(stageErr.Error())
		p.reportFailure(id, stageErr, log)
		return stageErr
	}

	// A zero exit from the mapper does not guarantee a model; COLMAP writes
	// sparse/0 only when reconstruction actually converged.
	if id == entity.StageSparseReconstruction && !id.Completed(p.workDir) {
		stageErr := &entity.StageExecutionError{
			Stage:  id.String(),
			Output: "sparse reconstruction produced no model (sparse/0 missing)",
		}
		_ = rec.MarkFailed(stageErr.Error())
		p.reportFailure(id, stageErr, log)
		return stageErr
	}

	if err := rec.MarkDone(); err != nil {
		return err
	}
	log.Info("stage completed",
		zap.String("stage", id.String()),
		zap.Duration("elapsed", rec.Elapsed),
	)
	return nil
}

// reportFailure surfaces the failing stage and whatever the external tool
// printed, regardless of verbosity.
func (p *Pipeline) reportFailure(id entity.StageID, err error, log *zap.Logger) {
	fields := []zap.Field{zap.String("stage", id.String()), zap.Error(err)}

	var stageErr *entity.StageExecutionError
	var frameErr *entity.FrameExtractionError
	switch {
	case errors.As(err, &stageErr) && stageErr.Output != "":
		fields = append(fields, zap.String("output", stageErr.Output))
	case errors.As(err, &frameErr) && frameErr.Output != "":
		fields = append(fields, zap.String("output", frameErr.Output))
	}
	log.Error("pipeline failed", fields...)
}

func (p *Pipeline) writeReport(run *entity.Run, log *zap.Logger) {
	line, err := run.Report().MarshalLine()
	if err != nil {
		log.Warn("could not serialize run report", zap.Error(err))
		return
	}
	path := filepath.Join(p.workDir, "runs.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warn("could not write run report", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		log.Warn("could not write run report", zap.Error(err))
	}
}

func (p *Pipeline) logOutputs(log *zap.Logger) {
	log.Info("output", zap.String("database", filepath.Join(p.workDir, "database.db")))
	log.Info("output", zap.String("sparse_model", filepath.Join(p.workDir, "sparse")))
	if !p.cfg.SkipDense {
		log.Info("output", zap.String("dense_point_cloud", filepath.Join(p.workDir, "dense", "fused.ply")))
		if !p.cfg.SkipMesh {
			log.Info("output", zap.String("mesh", filepath.Join(p.workDir, "dense", "meshed-poisson.ply")))
		}
	}
	log.Info("view the results in MeshLab, Blender or CloudCompare")
}
