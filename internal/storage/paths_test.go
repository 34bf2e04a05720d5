package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralcut/config"
)

func TestJobPaths(t *testing.T) {
	orig := config.Conf.App.TaskDir
	config.Conf.App.TaskDir = "/var/viralcut/tasks"
	defer func() { config.Conf.App.TaskDir = orig }()

	dir, err := JobDir("job-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/viralcut/tasks", "job-1"), dir)

	outDir, err := JobOutputDir("job-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "output"), outDir)

	clip, err := ClipPath("job-1", 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "segment_2.mp4"), clip)

	srt, err := SubtitlePath("job-1", 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "segment_2.srt"), srt)
}

func TestJobPathsRejectBadInput(t *testing.T) {
	_, err := JobDir("  ")
	assert.Error(t, err)

	_, err = ClipPath("job-1", 0)
	assert.Error(t, err)
}

func TestResolveBinPaths(t *testing.T) {
	origFfmpeg, origFfprobe := FfmpegPath, FfprobePath
	origConf := config.Conf.App
	defer func() {
		FfmpegPath, FfprobePath = origFfmpeg, origFfprobe
		config.Conf.App = origConf
	}()

	config.Conf.App.FfmpegPath = "/opt/ffmpeg/bin/ffmpeg"
	config.Conf.App.FfprobePath = ""
	FfmpegPath, FfprobePath = "ffmpeg", "ffprobe"

	ResolveBinPaths()
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", FfmpegPath)
	assert.Equal(t, "ffprobe", FfprobePath)
}
