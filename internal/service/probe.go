package service

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"viralcut/internal/storage"
	"viralcut/internal/types"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
)

// probeOutput is the subset of ffprobe -print_format json we care about.
type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// probeMedia runs ffprobe on the uploaded file and extracts the container
// duration and stream layout. Any unreadable or zero-duration file is
// rejected here, before the job is admitted.
func probeMedia(ctx context.Context, filePath string) (*types.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, storage.FfprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		log.GetLogger().Warn("ffprobe 执行失败 ffprobe failed", zap.String("file", filePath), zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrUnreadableMedia, err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (*types.MediaInfo, error) {
	var probed probeOutput
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnreadableMedia, err)
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return nil, apperrors.WrapWithDetail(apperrors.ErrUnreadableMedia, err, "invalid media duration")
	}

	info := &types.MediaInfo{
		Duration: duration,
		Format:   probed.Format.FormatName,
	}
	hasVideo := false
	for _, stream := range probed.Streams {
		switch stream.CodecType {
		case "video":
			hasVideo = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.VideoCodec = stream.CodecName
		case "audio":
			info.HasAudio = true
		}
	}
	if !hasVideo {
		return nil, apperrors.WrapWithDetail(apperrors.ErrUnreadableMedia, nil, "no video stream found")
	}
	return info, nil
}
