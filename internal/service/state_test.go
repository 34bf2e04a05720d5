package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"viralcut/internal/types"
)

func TestPublishEnforcesMonotonicProgress(t *testing.T) {
	st := registerJobState("job-mono", &types.JobSnapshot{
		JobId: "job-mono", Stage: types.JobStageAnalyzing, Progress: 40,
	})
	defer dropJobState("job-mono")

	// A stale writer can never move the bar backwards.
	snap := st.publish(&types.JobSnapshot{
		JobId: "job-mono", Stage: types.JobStageSegmenting, Progress: 30,
	})
	assert.Equal(t, 40, snap.Progress)
	assert.Equal(t, types.JobStageSegmenting, snap.Stage)

	snap = st.publish(&types.JobSnapshot{
		JobId: "job-mono", Stage: types.JobStageSegmenting, Progress: 55,
	})
	assert.Equal(t, 55, snap.Progress)
}

func TestPublishTerminalStageKeepsReportedProgress(t *testing.T) {
	st := registerJobState("job-term", &types.JobSnapshot{
		JobId: "job-term", Stage: types.JobStageRendering, Progress: 80,
	})
	defer dropJobState("job-term")

	snap := st.publish(&types.JobSnapshot{
		JobId: "job-term", Stage: types.JobStageError, Progress: 80, Error: "boom",
	})
	assert.Equal(t, types.JobStageError, snap.Stage)
	assert.Equal(t, "boom", snap.Error)
	assert.True(t, snap.Stage.Terminal())
}

func TestLookupJobState(t *testing.T) {
	_, ok := lookupJobState("missing")
	assert.False(t, ok)

	registerJobState("present", &types.JobSnapshot{JobId: "present"})
	defer dropJobState("present")
	st, ok := lookupJobState("present")
	assert.True(t, ok)
	assert.Equal(t, "present", st.current().JobId)
}
