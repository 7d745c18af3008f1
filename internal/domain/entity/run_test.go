package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunStartsAllStagesPending(t *testing.T) {
	run := NewRun("clip.mp4", "/tmp/clip_frames", InputVideo)

	require.Len(t, run.Stages, 8)
	for _, rec := range run.Stages {
		assert.Equal(t, StagePending, rec.State, rec.ID.String())
	}
	assert.NotEqual(t, "", run.ID.String())
}

func TestStageRecordTransitions(t *testing.T) {
	rec := &StageRecord{ID: StageFeatureExtraction, State: StagePending}

	require.NoError(t, rec.MarkRunning())
	require.NoError(t, rec.MarkDone())
	assert.Equal(t, StageDone, rec.State)

	rec = &StageRecord{ID: StageFeatureExtraction, State: StagePending}
	require.NoError(t, rec.MarkSkipped("output already present"))
	assert.Equal(t, "output already present", rec.Reason)

	rec = &StageRecord{ID: StageFeatureExtraction, State: StagePending}
	require.NoError(t, rec.MarkRunning())
	require.NoError(t, rec.MarkFailed("exit code 1"))
	assert.Equal(t, StageFailed, rec.State)
	assert.Equal(t, "exit code 1", rec.Error)
}

func TestStageRecordRejectsIllegalTransitions(t *testing.T) {
	rec := &StageRecord{ID: StageMeshing, State: StagePending}
	assert.Error(t, rec.MarkDone(), "pending cannot go straight to done")
	assert.Error(t, rec.MarkFailed("x"), "pending cannot go straight to failed")

	require.NoError(t, rec.MarkRunning())
	assert.Error(t, rec.MarkSkipped("y"), "running cannot be skipped")
	assert.Error(t, rec.MarkRunning(), "running cannot restart")

	require.NoError(t, rec.MarkDone())
	assert.Error(t, rec.MarkRunning(), "done is terminal")
	assert.Error(t, rec.MarkFailed("z"), "done is terminal")
}

func TestRunFailed(t *testing.T) {
	run := NewRun("images", "/tmp/images", InputImageDirectory)
	assert.False(t, run.Failed())

	rec := run.Stage(StageSparseReconstruction)
	require.NoError(t, rec.MarkRunning())
	require.NoError(t, rec.MarkFailed("boom"))
	assert.True(t, run.Failed())
}

func TestRunReport(t *testing.T) {
	run := NewRun("clip.mp4", "/tmp/clip_frames", InputVideo)
	require.NoError(t, run.Stage(StageFrameExtraction).MarkSkipped("frames already present"))
	require.NoError(t, run.Stage(StageFeatureExtraction).MarkRunning())
	require.NoError(t, run.Stage(StageFeatureExtraction).MarkDone())
	run.Finish()

	rep := run.Report()
	assert.Equal(t, run.ID, rep.RunID)
	assert.True(t, rep.Success)
	require.Len(t, rep.Stages, 8)
	assert.Equal(t, "SKIPPED", rep.Stages[0].State)
	assert.Equal(t, "DONE", rep.Stages[1].State)

	line, err := rep.MarshalLine()
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), line[len(line)-1])
}
