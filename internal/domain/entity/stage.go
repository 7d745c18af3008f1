package entity

import (
	"os"
	"path/filepath"
)

// StageID identifies one step of the reconstruction pipeline, in execution
// order. Stage 1 is frame extraction (ffmpeg); stages 2-8 run inside the
// COLMAP container.
type StageID int

const (
	StageFrameExtraction StageID = iota + 1
	StageFeatureExtraction
	StageFeatureMatching
	StageSparseReconstruction
	StageUndistortion
	StagePatchMatchStereo
	StageStereoFusion
	StageMeshing
)

// FirstContainerStage and LastContainerStage bound the stages that execute
// inside the COLMAP container; --step/--start-from/--stop-at range over them.
const (
	FirstContainerStage = StageFeatureExtraction
	LastContainerStage  = StageMeshing
)

// StageCategory groups stages for the skip flags: skipping dense removes the
// dense stages (and meshing, which consumes the fused point cloud), skipping
// mesh removes only the meshing stage.
type StageCategory string

const (
	CategoryInput  StageCategory = "input"
	CategorySparse StageCategory = "sparse"
	CategoryDense  StageCategory = "dense"
	CategoryMesh   StageCategory = "mesh"
)

func (s StageID) String() string {
	switch s {
	case StageFrameExtraction:
		return "frame-extraction"
	case StageFeatureExtraction:
		return "feature-extraction"
	case StageFeatureMatching:
		return "feature-matching"
	case StageSparseReconstruction:
		return "sparse-reconstruction"
	case StageUndistortion:
		return "undistortion"
	case StagePatchMatchStereo:
		return "patch-match-stereo"
	case StageStereoFusion:
		return "stereo-fusion"
	case StageMeshing:
		return "meshing"
	}
	return "unknown"
}

func (s StageID) Category() StageCategory {
	switch s {
	case StageFrameExtraction:
		return CategoryInput
	case StageUndistortion, StagePatchMatchStereo, StageStereoFusion:
		return CategoryDense
	case StageMeshing:
		return CategoryMesh
	default:
		return CategorySparse
	}
}

// AllStages returns the pipeline stages in execution order.
func AllStages() []StageID {
	return []StageID{
		StageFrameExtraction,
		StageFeatureExtraction,
		StageFeatureMatching,
		StageSparseReconstruction,
		StageUndistortion,
		StagePatchMatchStereo,
		StageStereoFusion,
		StageMeshing,
	}
}

// Completed reports whether the stage's output is already present in the
// working directory. The artifact layout (database.db, sparse/0, dense/...)
// is the contract between stages; existence of a stage's output is treated
// as proof of completion, which is what makes reruns resume instead of
// redoing finished work.
func (s StageID) Completed(workDir string) bool {
	switch s {
	case StageFeatureExtraction:
		return fileExists(filepath.Join(workDir, "database.db"))
	case StageFeatureMatching:
		// Matching mutates the database in place; a freshly created database
		// is near-empty, so require it to have grown past its initial size.
		info, err := os.Stat(filepath.Join(workDir, "database.db"))
		return err == nil && info.Size() > 1000
	case StageSparseReconstruction:
		return dirExists(filepath.Join(workDir, "sparse", "0"))
	case StageUndistortion:
		return globMatches(filepath.Join(workDir, "dense", "images", "*.jpg"))
	case StagePatchMatchStereo:
		return globMatches(filepath.Join(workDir, "dense", "stereo", "depth_maps", "*.geometric.bin"))
	case StageStereoFusion:
		return fileExists(filepath.Join(workDir, "dense", "fused.ply"))
	case StageMeshing:
		return fileExists(filepath.Join(workDir, "dense", "meshed-poisson.ply"))
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func globMatches(pattern string) bool {
	matches, err := filepath.Glob(pattern)
	return err == nil && len(matches) > 0
}
