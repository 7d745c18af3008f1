package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Clean removes generated pipeline artifacts for the given input: the
// database, sparse/ and dense/ trees, and extracted frames. Frames are only
// deleted from a *_frames directory this tool created; images in a
// user-supplied directory are never touched. Returns what was removed.
func Clean(inputPath string, logger *zap.Logger) ([]string, error) {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}

	workDir := abs
	if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
		// Video input (or not-yet-existing path): target the frames dir.
		stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		workDir = filepath.Join(filepath.Dir(abs), stem+"_frames")
	}

	var cleaned []string

	dbPath := filepath.Join(workDir, "database.db")
	if removeFile(dbPath) {
		cleaned = append(cleaned, "database.db")
	}

	for _, sub := range []string{"sparse", "dense"} {
		path := filepath.Join(workDir, sub)
		if _, err := os.Stat(path); err == nil {
			if err := os.RemoveAll(path); err != nil {
				return cleaned, fmt.Errorf("remove %s: %w", sub, err)
			}
			cleaned = append(cleaned, sub+"/")
		}
	}

	if removeFile(filepath.Join(workDir, "runs.log")) {
		cleaned = append(cleaned, "runs.log")
	}

	if strings.HasSuffix(filepath.Base(workDir), "_frames") {
		frames, _ := filepath.Glob(filepath.Join(workDir, "frame_*.jpg"))
		pngs, _ := filepath.Glob(filepath.Join(workDir, "frame_*.png"))
		frames = append(frames, pngs...)
		for _, f := range frames {
			if err := os.Remove(f); err != nil {
				return cleaned, fmt.Errorf("remove frame %s: %w", filepath.Base(f), err)
			}
		}
		if len(frames) > 0 {
			cleaned = append(cleaned, fmt.Sprintf("%d extracted frames", len(frames)))
		}

		if entries, err := os.ReadDir(workDir); err == nil && len(entries) == 0 {
			if err := os.Remove(workDir); err == nil {
				cleaned = append(cleaned, "empty "+filepath.Base(workDir)+" directory")
			}
		}
	}

	for _, item := range cleaned {
		logger.Debug("cleaned", zap.String("item", item))
	}
	return cleaned, nil
}

func removeFile(path string) bool {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return false
	}
	return os.Remove(path) == nil
}
