package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralcut/internal/types"
)

func moment(start, end, score float64) types.CandidateMoment {
	return types.CandidateMoment{Start: start, End: end, Score: score}
}

func TestSelectSegmentsGreedyNonOverlap(t *testing.T) {
	moments := []types.CandidateMoment{
		moment(0, 10, 0.9),
		moment(5, 15, 0.8),
		moment(20, 30, 0.8),
	}

	segments := SelectSegments(moments, 2)
	require.Len(t, segments, 2)

	// (5,15) overlaps the higher-scored (0,10) and is skipped.
	assert.Equal(t, 1, segments[0].SegmentNumber)
	assert.Equal(t, 0.0, segments[0].StartTime)
	assert.Equal(t, 10.0, segments[0].EndTime)
	assert.Equal(t, 2, segments[1].SegmentNumber)
	assert.Equal(t, 20.0, segments[1].StartTime)
	assert.Equal(t, 30.0, segments[1].EndTime)
}

func TestSelectSegmentsTieBreaksOnEarlierStart(t *testing.T) {
	moments := []types.CandidateMoment{
		moment(40, 50, 0.7),
		moment(10, 20, 0.7),
	}

	segments := SelectSegments(moments, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, 10.0, segments[0].StartTime)
}

func TestSelectSegmentsTouchingBoundariesCoexist(t *testing.T) {
	moments := []types.CandidateMoment{
		moment(0, 10, 0.9),
		moment(10, 20, 0.8),
	}

	segments := SelectSegments(moments, 3)
	assert.Len(t, segments, 2)
}

func TestSelectSegmentsCapsAtHardMax(t *testing.T) {
	moments := []types.CandidateMoment{
		moment(0, 10, 0.9),
		moment(20, 30, 0.8),
		moment(40, 50, 0.7),
		moment(60, 70, 0.6),
		moment(80, 90, 0.5),
	}

	segments := SelectSegments(moments, 10)
	assert.Len(t, segments, types.HardMaxClips)
}

func TestSelectSegmentsNeverPads(t *testing.T) {
	segments := SelectSegments([]types.CandidateMoment{moment(0, 15, 0.5)}, 3)
	require.Len(t, segments, 1)
	assert.Equal(t, 1, segments[0].SegmentNumber)
	assert.Equal(t, 15.0, segments[0].Duration)

	assert.Empty(t, SelectSegments(nil, 3))
	assert.Empty(t, SelectSegments([]types.CandidateMoment{moment(0, 10, 0.5)}, 0))
}

func TestSelectSegmentsNumbersByRankNotTimeline(t *testing.T) {
	// The late-but-stronger moment ranks first even though it comes later
	// in the source.
	moments := []types.CandidateMoment{
		moment(50, 60, 0.9),
		moment(0, 10, 0.8),
	}

	segments := SelectSegments(moments, 2)
	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].SegmentNumber)
	assert.Equal(t, 50.0, segments[0].StartTime)
	assert.Equal(t, 2, segments[1].SegmentNumber)
	assert.Equal(t, 0.0, segments[1].StartTime)
	assert.GreaterOrEqual(t, segments[0].HighlightScore, segments[1].HighlightScore)
}
