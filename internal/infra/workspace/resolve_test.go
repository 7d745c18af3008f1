package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoichims/colmap-with-gpu-pipeline/internal/domain/entity"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestResolveInputVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	writeFile(t, video)

	kind, workDir, err := ResolveInput(video)
	require.NoError(t, err)
	assert.Equal(t, entity.InputVideo, kind)
	assert.Equal(t, filepath.Join(dir, "clip_frames"), workDir)

	info, err := os.Stat(workDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "working directory is created for videos")
}

func TestResolveInputVideoExtensionsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.MP4", "b.MoV", "c.mkv", "d.WEBM", "e.3gp", "f.OGV", "g.m4v", "h.avi", "i.wmv", "j.FLV"} {
		path := filepath.Join(dir, name)
		writeFile(t, path)
		kind, _, err := ResolveInput(path)
		require.NoError(t, err, name)
		assert.Equal(t, entity.InputVideo, kind, name)
	}
}

func TestResolveInputImageDirectory(t *testing.T) {
	dir := t.TempDir()
	kind, workDir, err := ResolveInput(dir)
	require.NoError(t, err)
	assert.Equal(t, entity.InputImageDirectory, kind)
	assert.Equal(t, dir, workDir)
}

func TestResolveInputRejectsUnknownFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path)

	_, _, err := ResolveInput(path)
	var invalid *entity.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, path, invalid.Path)
}

func TestResolveInputRejectsMissingPath(t *testing.T) {
	_, _, err := ResolveInput(filepath.Join(t.TempDir(), "nope.mp4"))
	var invalid *entity.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "frame_000002.jpg"))
	writeFile(t, filepath.Join(dir, "frame_000001.JPG"))
	writeFile(t, filepath.Join(dir, "photo.PNG"))
	writeFile(t, filepath.Join(dir, "scan.tiff"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sparse"), 0755))

	images := ListImages(dir)
	assert.Len(t, images, 4)
	assert.Equal(t, filepath.Join(dir, "frame_000001.JPG"), images[0])
}

func TestValidateImageDir(t *testing.T) {
	dir := t.TempDir()
	_, err := ValidateImageDir(dir)
	var invalid *entity.InvalidInputError
	require.ErrorAs(t, err, &invalid)

	writeFile(t, filepath.Join(dir, "img.jpg"))
	count, err := ValidateImageDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestValidateImageDirFindsNestedImages(t *testing.T) {
	// Photo sets often arrive split into subdirectories; only the validation
	// walk descends, the flat listing stays at the top level.
	dir := t.TempDir()
	nested := filepath.Join(dir, "session1", "camera_a")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeFile(t, filepath.Join(nested, "img_001.jpg"))
	writeFile(t, filepath.Join(nested, "img_002.PNG"))
	writeFile(t, filepath.Join(nested, "notes.txt"))

	count, err := ValidateImageDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Empty(t, ListImages(dir))
}
