package entity

import "fmt"

// PipelineConfig is the immutable set of resolved options for one run. It is
// built once from environment defaults and CLI flags, then passed by value
// into every component; nothing mutates it after construction.
type PipelineConfig struct {
	InputPath string

	// Frame extraction.
	FPS          float64
	Quality      VideoQuality
	ForceExtract bool

	// Stage selection.
	SkipDense bool
	SkipMesh  bool
	StartFrom StageID
	StopAt    StageID

	// COLMAP container.
	DockerImage  string
	DockerBinary string
	GPUs         string
	MaxImageSize int

	// ffmpeg.
	FFmpegBinary  string
	FFprobeBinary string

	Verbose bool
}

// Validate checks the option combination before anything touches the
// filesystem or an external tool.
func (c PipelineConfig) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be greater than zero, got %g", c.FPS)
	}
	if _, err := ParseVideoQuality(string(c.Quality)); err != nil {
		return err
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("max image size must be greater than zero, got %d", c.MaxImageSize)
	}
	if c.StartFrom < FirstContainerStage || c.StartFrom > LastContainerStage {
		return fmt.Errorf("start stage %d out of range %d-%d", c.StartFrom, FirstContainerStage, LastContainerStage)
	}
	if c.StopAt < FirstContainerStage || c.StopAt > LastContainerStage {
		return fmt.Errorf("stop stage %d out of range %d-%d", c.StopAt, FirstContainerStage, LastContainerStage)
	}
	if c.StartFrom > c.StopAt {
		return fmt.Errorf("start stage %d is after stop stage %d", c.StartFrom, c.StopAt)
	}
	return nil
}

// StageExcluded reports whether the configuration removes a container stage
// from the run, and why. Existence checks are evaluated separately by the
// driver; this only covers the skip flags and the requested stage range.
func (c PipelineConfig) StageExcluded(id StageID) (bool, string) {
	if id < c.StartFrom || id > c.StopAt {
		return true, "outside requested stage range"
	}
	switch id.Category() {
	case CategoryDense:
		if c.SkipDense {
			return true, "dense reconstruction skipped"
		}
	case CategoryMesh:
		if c.SkipDense {
			return true, "dense reconstruction skipped"
		}
		if c.SkipMesh {
			return true, "mesh generation skipped"
		}
	}
	return false, ""
}
