package service

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"viralcut/config"
	"viralcut/log"
)

func TestMain(m *testing.M) {
	log.Logger = zap.NewNop()
	config.Conf = config.Config{
		Pipeline: config.PipelineConfig{
			Workers:            2,
			QueueSize:          128,
			RenderConcurrency:  3,
			SegmentMinDuration: 10,
			SegmentMaxDuration: 60,
			FreeMaxDuration:    300,
			PremiumMaxDuration: 1800,
			FreeMaxClips:       2,
			PremiumMaxClips:    3,
			RenderTimeout:      300,
		},
		Llm: config.LlmConfig{
			PrimaryModel:     "gpt-4o",
			FallbackModel:    "gpt-4o-mini",
			AnalysisTimeout:  120,
			SynthesisTimeout: 60,
		},
	}
	os.Exit(m.Run())
}
