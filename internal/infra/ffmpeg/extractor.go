package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/port"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/workspace"
)

// Extractor samples frames out of a video with ffmpeg. When the output
// directory already holds images and extraction is not forced, it does
// nothing but report what it found, which is what lets an interrupted run
// pick up where it left off.
type Extractor struct {
	runner     port.ProcessRunner
	ffmpegBin  string
	ffprobeBin string
	fps        float64
	quality    entity.VideoQuality
	force      bool
	logger     *zap.Logger
}

func NewExtractor(runner port.ProcessRunner, cfg entity.PipelineConfig, logger *zap.Logger) *Extractor {
	return &Extractor{
		runner:     runner,
		ffmpegBin:  cfg.FFmpegBinary,
		ffprobeBin: cfg.FFprobeBinary,
		fps:        cfg.FPS,
		quality:    cfg.Quality,
		force:      cfg.ForceExtract,
		logger:     logger,
	}
}

func (e *Extractor) ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameExtractionResult, error) {
	if !e.force {
		if existing := workspace.ListImages(outputDir); len(existing) > 0 {
			e.logger.Info("found existing images, skipping frame extraction (use --force-extract to re-extract)",
				zap.Int("count", len(existing)),
				zap.String("dir", outputDir),
			)
			return &port.FrameExtractionResult{
				FramePaths: existing,
				FrameCount: len(existing),
				Skipped:    true,
			}, nil
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if _, err := e.runner.LookPath(e.ffmpegBin); err != nil {
		return nil, err
	}

	duration, err := e.videoDuration(ctx, videoPath)
	if err != nil {
		e.logger.Warn("could not get video duration", zap.Error(err))
	}

	e.warnAboutRate()

	e.logger.Info("extracting frames",
		zap.String("video", filepath.Base(videoPath)),
		zap.String("dir", outputDir),
		zap.Float64("fps", e.fps),
		zap.String("quality", string(e.quality)),
	)

	framePattern := filepath.Join(outputDir, "frame_%06d.jpg")
	res, err := e.runner.Run(ctx, port.Command{
		Name: e.ffmpegBin,
		Args: []string{
			"-i", videoPath,
			"-vf", fmt.Sprintf("fps=%g", e.fps),
			"-q:v", strconv.Itoa(e.quality.QScale()),
			"-y",
			framePattern,
		},
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &entity.FrameExtractionError{
			Video:  videoPath,
			Reason: fmt.Sprintf("ffmpeg exited with code %d", res.ExitCode),
			Output: strings.TrimSpace(string(res.Output)),
		}
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, &entity.FrameExtractionError{
			Video:  videoPath,
			Reason: "no frames were extracted",
			Output: strings.TrimSpace(string(res.Output)),
		}
	}

	e.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.Float64("video_duration", duration),
	)
	e.warnAboutCount(len(frames))

	return &port.FrameExtractionResult{
		FramePaths:    frames,
		FrameCount:    len(frames),
		VideoDuration: duration,
	}, nil
}

func (e *Extractor) videoDuration(ctx context.Context, videoPath string) (float64, error) {
	res, err := e.runner.Run(ctx, port.Command{
		Name: e.ffprobeBin,
		Args: []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			videoPath,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("ffprobe exited with code %d", res.ExitCode)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(res.Output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

func (e *Extractor) warnAboutRate() {
	switch {
	case e.fps < 1.0:
		e.logger.Warn("low frame rate may result in poor 3D reconstruction; 1.5-3.0 fps works better",
			zap.Float64("fps", e.fps))
	case e.fps > 5.0:
		e.logger.Warn("high frame rate will create many frames and slow processing; 1.5-3.0 fps is usually enough",
			zap.Float64("fps", e.fps))
	}
}

func (e *Extractor) warnAboutCount(count int) {
	switch {
	case count < 20:
		e.logger.Warn("very few frames extracted, may not be sufficient for reconstruction; consider increasing --fps",
			zap.Int("count", count))
	case count > 500:
		e.logger.Warn("many frames extracted, processing will be slow; consider reducing --fps",
			zap.Int("count", count))
	}
}
