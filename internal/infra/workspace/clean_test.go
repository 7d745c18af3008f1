package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCleanVideoWorkspace(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	writeFile(t, video)

	workDir := filepath.Join(dir, "clip_frames")
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "sparse", "0"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(workDir, "dense"), 0755))
	writeFile(t, filepath.Join(workDir, "database.db"))
	writeFile(t, filepath.Join(workDir, "dense", "fused.ply"))
	writeFile(t, filepath.Join(workDir, "frame_000001.jpg"))
	writeFile(t, filepath.Join(workDir, "frame_000002.jpg"))
	writeFile(t, filepath.Join(workDir, "runs.log"))

	cleaned, err := Clean(video, zap.NewNop())
	require.NoError(t, err)
	assert.NotEmpty(t, cleaned)

	_, err = os.Stat(workDir)
	assert.True(t, os.IsNotExist(err), "emptied frames directory is removed")
}

func TestCleanImageDirectoryKeepsSourceImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "photo1.jpg"))
	writeFile(t, filepath.Join(dir, "photo2.jpg"))
	writeFile(t, filepath.Join(dir, "database.db"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sparse", "0"), 0755))

	cleaned, err := Clean(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, cleaned, "database.db")
	assert.Contains(t, cleaned, "sparse/")

	// The user's images stay untouched.
	assert.FileExists(t, filepath.Join(dir, "photo1.jpg"))
	assert.FileExists(t, filepath.Join(dir, "photo2.jpg"))
}

func TestCleanNothingToDo(t *testing.T) {
	dir := t.TempDir()
	cleaned, err := Clean(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, cleaned)
}
