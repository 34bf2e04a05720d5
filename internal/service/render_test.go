package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralcut/internal/types"
)

func TestRenderProfilesPerTier(t *testing.T) {
	premium, ok := renderProfiles[types.QualityTierPremium]
	require.True(t, ok)
	assert.Equal(t, "1080:1920", premium.Scale)
	assert.Equal(t, "18", premium.Crf)
	assert.Equal(t, "medium", premium.Preset)

	standard, ok := renderProfiles[types.QualityTierStandard]
	require.True(t, ok)
	assert.Equal(t, "720:1280", standard.Scale)
	assert.Equal(t, "23", standard.Crf)
	assert.Equal(t, "fast", standard.Preset)

	// Premium subtitles are heavier than standard ones.
	assert.Contains(t, premium.SubtitleStyle, "Bold=1")
	assert.NotContains(t, standard.SubtitleStyle, "Bold=1")
}

func TestEscapeFilterPath(t *testing.T) {
	assert.Equal(t, `/tmp/a.srt`, escapeFilterPath("/tmp/a.srt"))
	assert.Equal(t, `C\:\\tasks\\a.srt`, escapeFilterPath(`C:\tasks\a.srt`))
	assert.Equal(t, `/tmp/it\'s.srt`, escapeFilterPath("/tmp/it's.srt"))
}
