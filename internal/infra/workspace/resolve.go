// Package workspace resolves user input into a working directory and owns
// the filesystem housekeeping around it: image discovery, directory
// creation, and cleanup of generated artifacts.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true, ".mkv": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true, ".3gp": true, ".ogv": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".tiff": true, ".tif": true,
}

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// ResolveInput classifies the input path and derives the working directory.
// Videos get a sibling <stem>_frames directory (created here); an image
// directory is its own working directory. Anything else is invalid input.
func ResolveInput(inputPath string) (entity.InputKind, string, error) {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return "", "", fmt.Errorf("resolve input path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", "", &entity.InvalidInputError{Path: inputPath, Reason: "path does not exist"}
	}

	if info.IsDir() {
		return entity.InputImageDirectory, abs, nil
	}

	if !IsVideoFile(abs) {
		return "", "", &entity.InvalidInputError{
			Path:   inputPath,
			Reason: "neither a supported video file nor a directory",
		}
	}

	stem := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	workDir := filepath.Join(filepath.Dir(abs), stem+"_frames")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", "", fmt.Errorf("create working directory: %w", err)
	}
	return entity.InputVideo, workDir, nil
}

// ListImages returns the image files directly inside dir, sorted by name.
// Extensions match case-insensitively.
func ListImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(images)
	return images
}

// ValidateImageDir confirms the directory tree holds at least one image
// before any stage is attempted, and returns how many it found. The walk is
// recursive: users hand over nested photo sets, and COLMAP's feature
// extractor descends into subdirectories as well.
func ValidateImageDir(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", dir, err)
	}
	if count == 0 {
		return 0, &entity.InvalidInputError{Path: dir, Reason: "no image files found"}
	}
	return count, nil
}
