package types

import "context"

// ChatCompleter is the low-level LLM chat contract shared by analysis and
// caption synthesis.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnalysisRequest carries what the reasoning model needs to assess a video.
type AnalysisRequest struct {
	JobId       string
	Duration    float64
	QualityTier string
	MaxClips    int
}

// ViralAnalyzer produces a structured assessment for one video. Implementations
// wrap a single model; the fallback chain is itself a ViralAnalyzer.
type ViralAnalyzer interface {
	AnalyzeVideo(ctx context.Context, req AnalysisRequest) (*ViralAnalysis, error)
	Model() string
}

// AccountChecker is the account/premium collaborator consumed once at
// admission time.
type AccountChecker interface {
	IsPremium(ctx context.Context, accountRef string) (bool, error)
	MaxDuration(ctx context.Context, accountRef string) (float64, error)
}

// ArtifactMirror optionally copies rendered clips to durable remote storage.
type ArtifactMirror interface {
	UploadFile(ctx context.Context, key, localPath string) (string, error)
}

// JobSubmitter hands an admitted job to the execution backend (in-process
// runner or Redis queue).
type JobSubmitter interface {
	Submit(jobId string) error
}
