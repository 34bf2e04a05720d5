package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandStringWithUpperLowerNum(t *testing.T) {
	a := GenerateRandStringWithUpperLowerNum(8)
	b := GenerateRandStringWithUpperLowerNum(8)
	assert.Len(t, a, 8)
	assert.Len(t, b, 8)
	assert.NotEqual(t, a, b)
}

func TestExtractJsonFromText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "markdown code block",
			input:    "Here you go:\n```json\n{\"viral_score\": 0.9}\n```\nHope it helps!",
			expected: `{"viral_score": 0.9}`,
		},
		{
			name:     "bare object with prose",
			input:    `The result is {"a": 1} as requested.`,
			expected: `{"a": 1}`,
		},
		{
			name:     "array",
			input:    `[{"start": 0, "end": 10}]`,
			expected: `[{"start": 0, "end": 10}]`,
		},
		{
			name:     "no json returns raw",
			input:    "sorry, I cannot do that",
			expected: "sorry, I cannot do that",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractJsonFromText(tc.input))
		})
	}
}

func TestSplitCaptionLines(t *testing.T) {
	lines := SplitCaptionLines("this amazing trick changes everything you know about cooking", 20)
	assert.True(t, len(lines) > 1)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 20)
	}

	assert.Nil(t, SplitCaptionLines("   ", 20))

	// A single overlong word still yields one line rather than an empty result.
	assert.Equal(t, []string{"supercalifragilistic"}, SplitCaptionLines("supercalifragilistic", 5))
}

func TestFormatSrtTime(t *testing.T) {
	assert.Equal(t, "00:00:00,000", FormatSrtTime(0))
	assert.Equal(t, "00:01:05,500", FormatSrtTime(65.5))
	assert.Equal(t, "01:00:00,000", FormatSrtTime(3600))
	assert.Equal(t, "00:00:00,000", FormatSrtTime(-5))
}

func TestBuildSrt(t *testing.T) {
	srt := BuildSrt([]string{"hello", "world"}, 10)
	assert.Contains(t, srt, "1\n00:00:00,000 --> 00:00:05,000\nhello")
	assert.Contains(t, srt, "2\n00:00:05,000 --> 00:00:10,000\nworld")

	assert.Equal(t, "", BuildSrt(nil, 10))
	assert.Equal(t, "", BuildSrt([]string{"x"}, 0))
}
