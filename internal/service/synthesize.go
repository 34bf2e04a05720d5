package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"

	"viralcut/config"
	"viralcut/internal/types"
	"viralcut/log"
	"viralcut/pkg/util"
)

// captionEmojis are cycled onto premium captions. The pick is a
// deterministic hash of the caption so re-runs produce the same output.
var captionEmojis = []string{"🔥", "✨", "💥", "⚡", "🚀", "👀", "😱", "🤯"}

const captionSimilarityThreshold = 0.85

type synthesisResult struct {
	CaptionText string `json:"caption_text"`
	AudioScript string `json:"audio_script"`
}

// synthesizeSegments asks the model for a caption and audio script per
// segment. A failed or malformed response soft-fails to a placeholder built
// from the segment rationale and the content summary; it never fails the
// job. Near-duplicate captions are disambiguated with the segment number.
func (s Service) synthesizeSegments(ctx context.Context, job *types.Job, analysis *types.ViralAnalysis, segments []types.Segment) {
	timeout := time.Duration(config.Conf.Llm.SynthesisTimeout) * time.Second

	for i := range segments {
		seg := &segments[i]
		result, err := s.synthesizeOne(ctx, timeout, analysis, seg)
		if err != nil {
			log.GetLogger().Warn("片段文案生成失败，使用占位文案 segment synthesis failed, using placeholder",
				zap.String("jobId", job.JobId),
				zap.Int("segment", seg.SegmentNumber),
				zap.Error(err))
			result = placeholderSynthesis(analysis, seg)
		}
		seg.CaptionText = strings.TrimSpace(result.CaptionText)
		seg.AudioScript = strings.TrimSpace(result.AudioScript)
		if seg.CaptionText == "" {
			seg.CaptionText = placeholderSynthesis(analysis, seg).CaptionText
		}
	}

	dedupeCaptions(segments)

	if job.QualityTier == types.QualityTierPremium {
		for i := range segments {
			segments[i].CaptionText = prefixEmoji(segments[i].CaptionText)
		}
	}
}

func (s Service) synthesizeOne(ctx context.Context, timeout time.Duration, analysis *types.ViralAnalysis, seg *types.Segment) (*synthesisResult, error) {
	callCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	userPrompt := fmt.Sprintf(types.SynthesisPrompt,
		analysis.ContentSummary, seg.StartTime, seg.EndTime, seg.Rationale)
	raw, err := s.Completer.ChatCompletion(callCtx, types.SynthesisSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	jsonText := util.ExtractJsonFromText(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON object in synthesis output")
	}
	var result synthesisResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func placeholderSynthesis(analysis *types.ViralAnalysis, seg *types.Segment) *synthesisResult {
	caption := strings.TrimSpace(seg.Rationale)
	if caption == "" {
		caption = fmt.Sprintf("Highlight #%d", seg.SegmentNumber)
	}
	script := strings.TrimSpace(analysis.ContentSummary)
	if script == "" {
		script = caption
	}
	return &synthesisResult{CaptionText: caption, AudioScript: script}
}

// dedupeCaptions appends the segment number to captions that are
// near-identical to an earlier one, so viewers can tell clips apart.
func dedupeCaptions(segments []types.Segment) {
	for i := 1; i < len(segments); i++ {
		for j := 0; j < i; j++ {
			ratio := levenshtein.RatioForStrings(
				[]rune(segments[i].CaptionText),
				[]rune(segments[j].CaptionText),
				levenshtein.DefaultOptions)
			if ratio > captionSimilarityThreshold {
				segments[i].CaptionText = fmt.Sprintf("%s (%d)", segments[i].CaptionText, segments[i].SegmentNumber)
				break
			}
		}
	}
}

func prefixEmoji(caption string) string {
	if caption == "" {
		return caption
	}
	for _, emoji := range captionEmojis {
		if strings.HasPrefix(caption, emoji) {
			return caption
		}
	}
	var sum int
	for _, b := range []byte(caption) {
		sum += int(b)
	}
	return captionEmojis[sum%len(captionEmojis)] + " " + caption
}
