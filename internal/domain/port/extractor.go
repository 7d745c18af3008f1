package port

import "context"

type FrameExtractionResult struct {
	FramePaths    []string
	FrameCount    int
	VideoDuration float64

	// Skipped is set when frames were already present and extraction was
	// not forced; no external call was made in that case.
	Skipped bool
}

type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*FrameExtractionResult, error)
}
