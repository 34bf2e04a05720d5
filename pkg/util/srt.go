package util

import (
	"fmt"
	"strings"
)

// FormatSrtTime formats a second offset as an SRT timestamp (HH:MM:SS,mmm).
func FormatSrtTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatFfmpegTime formats a second offset for ffmpeg -ss/-t arguments.
func FormatFfmpegTime(seconds float64) string {
	return fmt.Sprintf("%.3f", seconds)
}

// BuildSrt renders numbered SRT cues from caption lines spread evenly across
// the clip duration. Timestamps are relative to the clip start.
func BuildSrt(lines []string, clipDuration float64) string {
	if len(lines) == 0 || clipDuration <= 0 {
		return ""
	}

	var sb strings.Builder
	cueDuration := clipDuration / float64(len(lines))
	for i, line := range lines {
		start := float64(i) * cueDuration
		end := float64(i+1) * cueDuration
		if end > clipDuration {
			end = clipDuration
		}
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", FormatSrtTime(start), FormatSrtTime(end)))
		sb.WriteString(line)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
