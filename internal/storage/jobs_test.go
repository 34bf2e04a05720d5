package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"viralcut/internal/types"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	log.Logger = zap.NewNop()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	origResolver := resolveDBPath
	resolveDBPath = func() (string, error) { return dbPath, nil }
	t.Cleanup(func() { resolveDBPath = origResolver; DB = nil })

	InitDB()
}

func TestSaveJobUpsertsByJobId(t *testing.T) {
	setupTestDB(t)

	job := &types.Job{
		JobId:       "job-1",
		SourcePath:  "/tmp/a.mp4",
		Duration:    120,
		QualityTier: types.QualityTierStandard,
		MaxClips:    2,
		Stage:       string(types.JobStageAdmitted),
		Progress:    5,
	}
	require.NoError(t, SaveJob(job))
	firstId := job.Id

	require.NoError(t, SaveJob(&types.Job{
		JobId:    "job-1",
		Stage:    string(types.JobStageAnalyzing),
		Progress: 20,
	}))

	got, err := GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, firstId, got.Id)
	assert.Equal(t, string(types.JobStageAnalyzing), got.Stage)
	assert.Equal(t, 20, got.Progress)
}

func TestGetJobNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := GetJob("no-such-job")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeJobNotFound))
}

func TestGetJobPreloadsAnalysisAndSegments(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveJob(&types.Job{JobId: "job-2", Stage: string(types.JobStageCompleted)}))
	require.NoError(t, SaveAnalysis(&types.ViralAnalysis{
		JobId:            "job-2",
		ViralScore:       0.8,
		ViralTechniques:  []string{"hook"},
		CandidateMoments: []types.CandidateMoment{{Start: 0, End: 20, Score: 0.9}},
	}))
	require.NoError(t, SaveSegments([]types.Segment{
		{JobId: "job-2", SegmentNumber: 1, StartTime: 0, EndTime: 20},
		{JobId: "job-2", SegmentNumber: 2, StartTime: 40, EndTime: 60},
	}))

	got, err := GetJob("job-2")
	require.NoError(t, err)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, 0.8, got.Analysis.ViralScore)
	require.Len(t, got.Analysis.CandidateMoments, 1)
	assert.Len(t, got.Segments, 2)
}

func TestSaveSegmentsUpdatesOnSecondWrite(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveJob(&types.Job{JobId: "job-up", Stage: string(types.JobStageSegmenting)}))
	segments := []types.Segment{
		{JobId: "job-up", SegmentNumber: 1, StartTime: 0, EndTime: 20},
		{JobId: "job-up", SegmentNumber: 2, StartTime: 40, EndTime: 60},
	}
	require.NoError(t, SaveSegments(segments))

	// The first insert backfills the autoincrement ids; writing the same
	// slice again must update the rows, not insert duplicates.
	segments[0].CaptionText = "opening hook"
	segments[1].CaptionText = "payoff moment"
	require.NoError(t, SaveSegments(segments))

	got, err := GetJob("job-up")
	require.NoError(t, err)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, "opening hook", got.Segments[0].CaptionText)
	assert.Equal(t, "payoff moment", got.Segments[1].CaptionText)
}

func TestDeleteJobIsIdempotent(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveJob(&types.Job{JobId: "job-3", Stage: string(types.JobStageCompleted)}))
	require.NoError(t, SaveSegments([]types.Segment{{JobId: "job-3", SegmentNumber: 1}}))

	require.NoError(t, DeleteJob("job-3"))
	_, err := GetJob("job-3")
	assert.True(t, apperrors.Is(err, apperrors.CodeJobNotFound))

	// Second delete of the same id is a no-op.
	assert.NoError(t, DeleteJob("job-3"))
}

func TestMarkStaleJobs(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveJob(&types.Job{JobId: "stale-1", Stage: string(types.JobStageRendering), Progress: 80}))
	require.NoError(t, SaveJob(&types.Job{JobId: "stale-2", Stage: string(types.JobStageAnalyzing), Progress: 20}))
	require.NoError(t, SaveJob(&types.Job{JobId: "done-1", Stage: string(types.JobStageCompleted), Progress: 100}))

	count, err := MarkStaleJobs()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := GetJob("stale-1")
	require.NoError(t, err)
	assert.Equal(t, string(types.JobStageError), got.Stage)
	assert.NotEmpty(t, got.FailReason)

	done, err := GetJob("done-1")
	require.NoError(t, err)
	assert.Equal(t, string(types.JobStageCompleted), done.Stage)
}

func TestGetJobHistoryOrdersNewestFirst(t *testing.T) {
	setupTestDB(t)

	require.NoError(t, SaveJob(&types.Job{JobId: "h-1", Stage: string(types.JobStageCompleted)}))
	require.NoError(t, SaveJob(&types.Job{JobId: "h-2", Stage: string(types.JobStageError)}))

	jobs, err := GetJobHistory(10)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}
