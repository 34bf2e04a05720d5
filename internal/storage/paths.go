package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"viralcut/config"
)

// Binary paths resolved at startup; overridable via config for packaged
// deployments that ship their own ffmpeg.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
)

// ResolveBinPaths picks up configured ffmpeg/ffprobe locations.
func ResolveBinPaths() {
	if config.Conf.App.FfmpegPath != "" {
		FfmpegPath = config.Conf.App.FfmpegPath
	}
	if config.Conf.App.FfprobePath != "" {
		FfprobePath = config.Conf.App.FfprobePath
	}
}

func taskRoot() string {
	if config.Conf.App.TaskDir != "" {
		return config.Conf.App.TaskDir
	}
	return "./tasks"
}

// JobDir returns the working directory for one job.
func JobDir(jobId string) (string, error) {
	if strings.TrimSpace(jobId) == "" {
		return "", fmt.Errorf("job id is empty")
	}
	return filepath.Join(taskRoot(), jobId), nil
}

// JobOutputDir returns the directory holding rendered artifacts.
func JobOutputDir(jobId string) (string, error) {
	dir, err := JobDir(jobId)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "output"), nil
}

// ClipPath addresses one rendered clip by job id and segment number.
func ClipPath(jobId string, segmentNumber int) (string, error) {
	if segmentNumber < 1 {
		return "", fmt.Errorf("segment number %d is out of range", segmentNumber)
	}
	outDir, err := JobOutputDir(jobId)
	if err != nil {
		return "", err
	}
	return filepath.Join(outDir, fmt.Sprintf("segment_%d.mp4", segmentNumber)), nil
}

// SubtitlePath addresses the burned-in subtitle source for one segment.
func SubtitlePath(jobId string, segmentNumber int) (string, error) {
	outDir, err := JobOutputDir(jobId)
	if err != nil {
		return "", err
	}
	return filepath.Join(outDir, fmt.Sprintf("segment_%d.srt", segmentNumber)), nil
}
