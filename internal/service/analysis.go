package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"viralcut/config"
	"viralcut/internal/types"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
	"viralcut/pkg/util"
)

// ModelAnalyzer asks a single chat model for the viral analysis of a video.
type ModelAnalyzer struct {
	completer types.ChatCompleter
	model     string
}

func NewModelAnalyzer(completer types.ChatCompleter, model string) *ModelAnalyzer {
	return &ModelAnalyzer{completer: completer, model: model}
}

func (m *ModelAnalyzer) Model() string {
	return m.model
}

func (m *ModelAnalyzer) AnalyzeVideo(ctx context.Context, req types.AnalysisRequest) (*types.ViralAnalysis, error) {
	prompt := config.Conf.Pipeline.AnalysisPrompt
	if prompt == "" {
		prompt = types.AnalysisPrompt
	}
	userPrompt := fmt.Sprintf(prompt,
		req.Duration,
		req.QualityTier,
		req.MaxClips,
		config.Conf.Pipeline.SegmentMinDuration,
		config.Conf.Pipeline.SegmentMaxDuration,
	)

	raw, err := m.completer.ChatCompletion(ctx, types.AnalysisSystemPrompt, userPrompt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, err)
	}

	analysis, err := parseAnalysisResponse(raw, req.Duration, req.MaxClips)
	if err != nil {
		return nil, err
	}
	analysis.JobId = req.JobId
	analysis.AnalysisModel = m.model
	return analysis, nil
}

// rawAnalysis mirrors the JSON schema the model is instructed to emit.
type rawAnalysis struct {
	ViralScore        float64 `json:"viral_score"`
	ContentType       string  `json:"content_type"`
	TargetAudience    string  `json:"target_audience"`
	ViralTechniques   []string `json:"viral_techniques"`
	EngagementFactors []string `json:"engagement_factors"`
	ContentSummary    string  `json:"content_summary"`
	AnalysisText      string  `json:"analysis_text"`
	CandidateMoments  []struct {
		Start  float64 `json:"start"`
		End    float64 `json:"end"`
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	} `json:"candidate_moments"`
}

// parseAnalysisResponse extracts and validates the model's JSON payload.
// Malformed output is a parse failure (fed back into the retry chain); a
// well-formed payload with no usable moments falls back to evenly spaced
// default candidates.
func parseAnalysisResponse(raw string, duration float64, maxClips int) (*types.ViralAnalysis, error) {
	jsonText := util.ExtractJsonFromText(raw)
	if jsonText == "" {
		return nil, apperrors.WrapWithDetail(apperrors.ErrAnalysisParseFailed, nil, "no JSON object in model output")
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.ErrAnalysisParseFailed, err, "invalid analysis JSON")
	}

	if parsed.ViralScore < 0 {
		parsed.ViralScore = 0
	}
	if parsed.ViralScore > 1 {
		parsed.ViralScore = 1
	}

	minDur := config.Conf.Pipeline.SegmentMinDuration
	maxDur := config.Conf.Pipeline.SegmentMaxDuration

	moments := make([]types.CandidateMoment, 0, len(parsed.CandidateMoments))
	for _, cm := range parsed.CandidateMoments {
		start, end := cm.Start, cm.End
		if start < 0 {
			start = 0
		}
		if end > duration {
			end = duration
		}
		if end-start < minDur {
			continue
		}
		if end-start > maxDur {
			end = start + maxDur
		}
		score := cm.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		moments = append(moments, types.CandidateMoment{
			Start:     start,
			End:       end,
			Score:     score,
			Rationale: strings.TrimSpace(cm.Reason),
		})
	}

	if len(moments) == 0 {
		log.GetLogger().Warn("分析未返回可用片段，使用默认切分 analysis returned no usable moments, using default segmentation",
			zap.Float64("duration", duration))
		moments = defaultCandidateMoments(duration, maxClips)
	}

	return &types.ViralAnalysis{
		ViralScore:        parsed.ViralScore,
		ContentType:       parsed.ContentType,
		TargetAudience:    parsed.TargetAudience,
		ViralTechniques:   parsed.ViralTechniques,
		EngagementFactors: parsed.EngagementFactors,
		ContentSummary:    parsed.ContentSummary,
		AnalysisText:      parsed.AnalysisText,
		CandidateMoments:  moments,
	}, nil
}

// defaultCandidateMoments spreads clips evenly across the source when the
// model declines to pick any. Scores descend slightly so ordering stays
// deterministic downstream.
func defaultCandidateMoments(duration float64, maxClips int) []types.CandidateMoment {
	minDur := config.Conf.Pipeline.SegmentMinDuration
	maxDur := config.Conf.Pipeline.SegmentMaxDuration
	if maxClips < 1 {
		maxClips = 1
	}

	clipLen := duration / float64(maxClips+1)
	if clipLen < minDur {
		clipLen = minDur
	}
	if clipLen > maxDur {
		clipLen = maxDur
	}
	if clipLen > duration {
		clipLen = duration
	}

	moments := make([]types.CandidateMoment, 0, maxClips)
	for i := 0; i < maxClips; i++ {
		start := float64(i) * duration / float64(maxClips)
		end := start + clipLen
		if end > duration {
			end = duration
			start = end - clipLen
			if start < 0 {
				start = 0
			}
		}
		if end-start < minDur && duration >= minDur {
			continue
		}
		moments = append(moments, types.CandidateMoment{
			Start:     start,
			End:       end,
			Score:     0.5 - 0.01*float64(i),
			Rationale: "默认切分片段 default segmentation",
		})
	}
	return moments
}

// FallbackAnalyzer wraps a primary and a fallback model. The chain is:
// primary, backoff then primary again, then fallback. Each attempt runs
// under its own timeout; only after all three fail does the job see
// ErrAnalysisUnavailable.
type FallbackAnalyzer struct {
	Primary        types.ViralAnalyzer
	Fallback       types.ViralAnalyzer
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
}

func (f *FallbackAnalyzer) Model() string {
	return f.Primary.Model()
}

func (f *FallbackAnalyzer) AnalyzeVideo(ctx context.Context, req types.AnalysisRequest) (*types.ViralAnalysis, error) {
	attempts := []struct {
		analyzer types.ViralAnalyzer
		backoff  time.Duration
	}{
		{f.Primary, 0},
		{f.Primary, f.RetryBackoff},
		{f.Fallback, 0},
	}

	var lastErr error
	for i, attempt := range attempts {
		if attempt.backoff > 0 {
			select {
			case <-time.After(attempt.backoff):
			case <-ctx.Done():
				return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, ctx.Err())
			}
		}
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, ctx.Err())
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if f.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, f.AttemptTimeout)
		}
		analysis, err := attempt.analyzer.AnalyzeVideo(attemptCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return analysis, nil
		}
		lastErr = err
		log.GetLogger().Warn("视频分析尝试失败 analysis attempt failed",
			zap.String("jobId", req.JobId),
			zap.Int("attempt", i+1),
			zap.String("model", attempt.analyzer.Model()),
			zap.Error(err))
	}
	return nil, apperrors.Wrap(apperrors.ErrAnalysisUnavailable, lastErr)
}
