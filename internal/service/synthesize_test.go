package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"viralcut/internal/mocks"
	"viralcut/internal/types"
)

func TestSynthesizeSegmentsParsesModelOutput(t *testing.T) {
	completer := &mocks.MockChatCompleter{}
	completer.On("ChatCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"caption_text": "Watch this trick", "audio_script": "[Exciting] Here is the trick."}`, nil)

	svc := Service{Completer: completer}
	job := &types.Job{JobId: "job-1", QualityTier: types.QualityTierStandard}
	analysis := &types.ViralAnalysis{ContentSummary: "ffmpeg tips"}
	segments := []types.Segment{{SegmentNumber: 1, StartTime: 0, EndTime: 20, Rationale: "hook"}}

	svc.synthesizeSegments(context.Background(), job, analysis, segments)
	assert.Equal(t, "Watch this trick", segments[0].CaptionText)
	assert.Equal(t, "[Exciting] Here is the trick.", segments[0].AudioScript)
}

func TestSynthesizeSegmentsSoftFailsToPlaceholder(t *testing.T) {
	completer := &mocks.MockChatCompleter{}
	completer.On("ChatCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("llm down"))

	svc := Service{Completer: completer}
	job := &types.Job{JobId: "job-1", QualityTier: types.QualityTierStandard}
	analysis := &types.ViralAnalysis{ContentSummary: "An ffmpeg walkthrough"}
	segments := []types.Segment{
		{SegmentNumber: 1, Rationale: "Strong opening hook"},
		{SegmentNumber: 2},
	}

	svc.synthesizeSegments(context.Background(), job, analysis, segments)

	// Synthesis failure never fails the pipeline.
	assert.Equal(t, "Strong opening hook", segments[0].CaptionText)
	assert.Equal(t, "An ffmpeg walkthrough", segments[0].AudioScript)
	assert.Equal(t, "Highlight #2", segments[1].CaptionText)
}

func TestSynthesizeSegmentsPremiumGetsEmojiPrefix(t *testing.T) {
	completer := &mocks.MockChatCompleter{}
	completer.On("ChatCompletion", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"caption_text": "Watch this", "audio_script": "script"}`, nil)

	svc := Service{Completer: completer}
	job := &types.Job{JobId: "job-1", QualityTier: types.QualityTierPremium}
	analysis := &types.ViralAnalysis{ContentSummary: "s"}
	segments := []types.Segment{{SegmentNumber: 1}}

	svc.synthesizeSegments(context.Background(), job, analysis, segments)

	found := false
	for _, emoji := range captionEmojis {
		if strings.HasPrefix(segments[0].CaptionText, emoji+" ") {
			found = true
			break
		}
	}
	assert.True(t, found, "premium caption should carry an emoji prefix: %q", segments[0].CaptionText)
	assert.True(t, strings.HasSuffix(segments[0].CaptionText, "Watch this"))
}

func TestDedupeCaptionsDisambiguatesNearDuplicates(t *testing.T) {
	segments := []types.Segment{
		{SegmentNumber: 1, CaptionText: "You will not believe this trick"},
		{SegmentNumber: 2, CaptionText: "You will not believe this trick!"},
		{SegmentNumber: 3, CaptionText: "A completely different caption"},
	}

	dedupeCaptions(segments)
	assert.Equal(t, "You will not believe this trick", segments[0].CaptionText)
	assert.Equal(t, "You will not believe this trick! (2)", segments[1].CaptionText)
	assert.Equal(t, "A completely different caption", segments[2].CaptionText)
}

func TestPrefixEmojiIsDeterministic(t *testing.T) {
	first := prefixEmoji("Same caption")
	second := prefixEmoji("Same caption")
	assert.Equal(t, first, second)

	// Already-prefixed captions are left alone.
	assert.Equal(t, first, prefixEmoji(first))
	assert.Equal(t, "", prefixEmoji(""))
}
