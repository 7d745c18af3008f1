package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/colmap"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/config"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/ffmpeg"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/proc"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/infra/workspace"
	"github.com/yoichims/colmap-with-gpu-pipeline/internal/usecase"
	"github.com/yoichims/colmap-with-gpu-pipeline/pkg/logger"
)

func main() {
	envCfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	// SIGINT/SIGTERM cancel the context, which kills any in-flight external
	// process; whatever it already wrote stays on disk for the next run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(envCfg)
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(envCfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "colmap-pipeline",
		Usage: "3D reconstruction from a video or image directory via containerized COLMAP",
		Commands: []*cli.Command{
			runCommand(envCfg),
		},
	}
}

func runCommand(envCfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the reconstruction pipeline",
		ArgsUsage: "<input_path>",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  "fps",
				Usage: "frames per second to extract from video",
				Value: envCfg.FPS,
			},
			&cli.StringFlag{
				Name:  "video-quality",
				Usage: "quality of extracted frames (high, medium, low)",
				Value: envCfg.VideoQuality,
			},
			&cli.BoolFlag{
				Name:  "force-extract",
				Usage: "re-extract frames even if images already exist",
			},
			&cli.BoolFlag{
				Name:  "skip-dense",
				Usage: "skip dense reconstruction (sparse model only)",
			},
			&cli.BoolFlag{
				Name:  "skip-mesh",
				Usage: "skip mesh generation (stop at the dense point cloud)",
			},
			&cli.IntFlag{
				Name:  "max-image-size",
				Usage: "maximum image dimension for undistortion",
				Value: 2000,
			},
			&cli.StringFlag{
				Name:  "docker-image",
				Usage: "COLMAP docker image",
				Value: envCfg.DockerImage,
			},
			&cli.StringFlag{
				Name:  "gpus",
				Usage: "docker --gpus value, empty disables GPU passthrough",
				Value: envCfg.GPUs,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "stream external tool output live",
			},
			&cli.BoolFlag{
				Name:  "clean",
				Usage: "remove generated artifacts before processing",
			},
			&cli.BoolFlag{
				Name:  "clean-only",
				Usage: "remove generated artifacts and exit",
			},
			&cli.IntFlag{
				Name:  "step",
				Usage: "run only this stage (2-8)",
			},
			&cli.IntFlag{
				Name:  "start-from",
				Usage: "start from this stage (2-8)",
				Value: 2,
			},
			&cli.IntFlag{
				Name:  "stop-at",
				Usage: "stop after this stage (2-8)",
				Value: 8,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
				Value: envCfg.LogLevel,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runAction(ctx, cmd, envCfg)
		},
	}
}

func runAction(ctx context.Context, cmd *cli.Command, envCfg *config.Config) error {
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("missing required argument: <input_path>")
	}

	log, err := logger.New(cmd.String("log-level"))
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := buildConfig(cmd, envCfg, input)
	if err != nil {
		return err
	}

	if cmd.Bool("clean") || cmd.Bool("clean-only") {
		cleaned, err := workspace.Clean(input, log)
		if err != nil {
			return fmt.Errorf("clean: %w", err)
		}
		if len(cleaned) > 0 {
			log.Info("clean completed", zap.Strings("removed", cleaned))
		} else {
			log.Info("nothing to clean")
		}
		if cmd.Bool("clean-only") {
			return nil
		}
	}

	kind, workDir, err := workspace.ResolveInput(input)
	if err != nil {
		return err
	}

	runner := proc.NewExecRunner(cfg.Verbose, log)
	extractor := ffmpeg.NewExtractor(runner, cfg, log)
	stages := colmap.NewRunner(runner, cfg, workDir, log)
	pipeline := usecase.NewPipeline(cfg, workDir, kind, extractor, stages, log)

	_, err = pipeline.Run(ctx)
	return err
}

func buildConfig(cmd *cli.Command, envCfg *config.Config, input string) (entity.PipelineConfig, error) {
	quality, err := entity.ParseVideoQuality(cmd.String("video-quality"))
	if err != nil {
		return entity.PipelineConfig{}, err
	}

	maxImageSize := int(cmd.Int("max-image-size"))
	if !cmd.IsSet("max-image-size") {
		maxImageSize = envCfg.MaxImageSize
	}

	startFrom := entity.StageID(cmd.Int("start-from"))
	stopAt := entity.StageID(cmd.Int("stop-at"))
	if step := entity.StageID(cmd.Int("step")); step != 0 {
		if cmd.IsSet("start-from") || cmd.IsSet("stop-at") {
			return entity.PipelineConfig{}, fmt.Errorf("--step cannot be combined with --start-from or --stop-at")
		}
		startFrom, stopAt = step, step
	}

	cfg := entity.PipelineConfig{
		InputPath:     input,
		FPS:           cmd.Float("fps"),
		Quality:       quality,
		ForceExtract:  cmd.Bool("force-extract"),
		SkipDense:     cmd.Bool("skip-dense"),
		SkipMesh:      cmd.Bool("skip-mesh"),
		StartFrom:     startFrom,
		StopAt:        stopAt,
		DockerImage:   cmd.String("docker-image"),
		DockerBinary:  envCfg.DockerBinary,
		GPUs:          cmd.String("gpus"),
		MaxImageSize:  maxImageSize,
		FFmpegBinary:  envCfg.FFmpegBinary,
		FFprobeBinary: envCfg.FFprobeBinary,
		Verbose:       cmd.Bool("verbose"),
	}
	if err := cfg.Validate(); err != nil {
		return entity.PipelineConfig{}, err
	}
	return cfg, nil
}
