package dto

// CreateJobReq 创建分析任务。Url 支持 "local:" 前缀引用已上传文件。
type CreateJobReq struct {
	Url        string `json:"url" form:"url"`
	AccountRef string `json:"account_ref" form:"account_ref"`
}

type CreateJobResData struct {
	JobId       string  `json:"job_id"`
	Duration    float64 `json:"duration"`
	QualityTier string  `json:"quality_tier"`
	MaxClips    int     `json:"max_clips"`
}

// GetJobStatusReq 查询任务状态
type GetJobStatusReq struct {
	JobId string `form:"jobId" uri:"jobId"`
}

type JobStatusResData struct {
	JobId    string `json:"job_id"`
	Stage    string `json:"stage"`
	Progress int    `json:"progress"` // 0-100
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

type AnalysisResData struct {
	JobId             string            `json:"job_id"`
	ViralScore        float64           `json:"viral_score"`
	ContentType       string            `json:"content_type"`
	TargetAudience    string            `json:"target_audience,omitempty"`
	ViralTechniques   []string          `json:"viral_techniques"`
	EngagementFactors []string          `json:"engagement_factors"`
	ContentSummary    string            `json:"content_summary"`
	AnalysisText      string            `json:"analysis_text"`
	CandidateMoments  []CandidateMoment `json:"candidate_moments"`
}

type CandidateMoment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Score     float64 `json:"score"`
	Rationale string  `json:"reason"`
}

type SegmentResData struct {
	SegmentNumber  int     `json:"segment_number"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Duration       float64 `json:"duration"`
	HighlightScore float64 `json:"highlight_score"`
	CaptionText    string  `json:"caption_text"`
	AudioScript    string  `json:"audio_script"`
	ClipUrl        string  `json:"clip_url,omitempty"`
}

type JobHistoryItem struct {
	JobId       string  `json:"job_id"`
	Stage       string  `json:"stage"`
	Progress    int     `json:"progress"`
	Duration    float64 `json:"duration"`
	QualityTier string  `json:"quality_tier"`
	CreateTime  string  `json:"create_time"`
}
