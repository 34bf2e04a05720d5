package types

import "time"

// JobStage names a step in the job state machine.
type JobStage string

const (
	JobStageUploaded   JobStage = "uploaded"
	JobStageProbing    JobStage = "probing"
	JobStageAdmitted   JobStage = "admitted"
	JobStageAnalyzing  JobStage = "analyzing"
	JobStageSegmenting JobStage = "segmenting"
	JobStageGenerating JobStage = "generating"
	JobStageRendering  JobStage = "rendering"
	JobStageCompleted  JobStage = "completed"
	JobStageError      JobStage = "error"
)

// Terminal reports whether the stage ends the job lifecycle.
func (s JobStage) Terminal() bool {
	return s == JobStageCompleted || s == JobStageError
}

// Quality tiers carried from admission into rendering.
const (
	QualityTierStandard = "standard"
	QualityTierPremium  = "premium"
)

// HardMaxClips caps the segment count regardless of tier.
const HardMaxClips = 3

// Job is one end-to-end processing run for a single uploaded video.
// Stage/Progress/Message are mutated only by the job's own worker; pollers
// read the in-memory snapshot, this row is the durable copy.
type Job struct {
	Id          uint64  `json:"-" gorm:"primaryKey;autoIncrement"`
	JobId       string  `json:"job_id" gorm:"uniqueIndex;size:64"`
	AccountRef  string  `json:"account_ref" gorm:"size:128"`
	SourcePath  string  `json:"-"`
	Duration    float64 `json:"duration"`
	QualityTier string  `json:"quality_tier" gorm:"size:16"`
	MaxClips    int     `json:"max_clips"`

	Stage      string `json:"stage" gorm:"size:16;index"`
	Progress   int    `json:"progress"`
	Message    string `json:"message"`
	FailReason string `json:"fail_reason,omitempty"`

	Analysis *ViralAnalysis `json:"analysis,omitempty" gorm:"foreignKey:JobId;references:JobId"`
	Segments []Segment      `json:"segments,omitempty" gorm:"foreignKey:JobId;references:JobId"`

	CreateTime time.Time `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"autoUpdateTime"`
}

// JobSnapshot is the atomic progress view handed to pollers. A snapshot is
// immutable once published; the writer swaps in a fresh value per transition.
type JobSnapshot struct {
	JobId    string   `json:"job_id"`
	Stage    JobStage `json:"stage"`
	Progress int      `json:"progress"`
	Message  string   `json:"message"`
	Error    string   `json:"error,omitempty"`
}

// MediaInfo is the result of probing an uploaded file.
type MediaInfo struct {
	Duration   float64
	Width      int
	Height     int
	VideoCodec string
	HasAudio   bool
	Format     string
}
