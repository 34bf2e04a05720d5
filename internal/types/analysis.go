package types

import "time"

// ViralAnalysis is the structured viral-content assessment produced once per
// job. Immutable after the analyzing stage; list fields keep the model's
// relevance order.
type ViralAnalysis struct {
	Id    uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId string `json:"job_id" gorm:"index;size:64"`

	ViralScore        float64           `json:"viral_score"`
	ContentType       string            `json:"content_type" gorm:"size:64"`
	TargetAudience    string            `json:"target_audience,omitempty"`
	ViralTechniques   []string          `json:"viral_techniques" gorm:"serializer:json"`
	EngagementFactors []string          `json:"engagement_factors" gorm:"serializer:json"`
	ContentSummary    string            `json:"content_summary"`
	AnalysisText      string            `json:"analysis_text"`
	CandidateMoments  []CandidateMoment `json:"candidate_moments" gorm:"serializer:json"`

	// AnalysisModel records which model of the fallback chain answered.
	// Diagnostic only; API callers cannot rely on it.
	AnalysisModel string `json:"analysis_model,omitempty" gorm:"size:64"`

	CreateTime time.Time `json:"create_time" gorm:"autoCreateTime"`
}

// CandidateMoment is a scored time interval proposed by the reasoning model
// before selection.
type CandidateMoment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Score     float64 `json:"score"`
	Rationale string  `json:"reason"`
}

// Segment is one selected highlight interval with its caption, voice script
// and rendered clip artifact.
type Segment struct {
	Id    uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId string `json:"job_id" gorm:"index;size:64"`

	SegmentNumber  int     `json:"segment_number"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Duration       float64 `json:"duration"`
	HighlightScore float64 `json:"highlight_score"`
	CaptionText    string  `json:"caption_text"`
	AudioScript    string  `json:"audio_script"`
	Rationale      string  `json:"-"`

	ClipPath string `json:"-"`
	ClipUrl  string `json:"clip_url,omitempty"`

	CreateTime time.Time `json:"create_time" gorm:"autoCreateTime"`
}
