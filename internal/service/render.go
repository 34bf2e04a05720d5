package service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"viralcut/config"
	"viralcut/internal/storage"
	"viralcut/internal/types"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
	"viralcut/pkg/util"
)

const captionLineMaxLen = 35

// renderProfile binds a quality tier to its encode settings and subtitle
// style. The ASS force_style goes straight into the ffmpeg subtitles filter.
type renderProfile struct {
	Scale         string
	Crf           string
	Preset        string
	SubtitleStyle string
}

var renderProfiles = map[string]renderProfile{
	types.QualityTierPremium: {
		Scale:         "1080:1920",
		Crf:           "18",
		Preset:        "medium",
		SubtitleStyle: "FontName=Arial,FontSize=16,PrimaryColour=&HFFFFFF,OutlineColour=&H000000,Outline=2,Shadow=1,Bold=1,Alignment=2,MarginV=80",
	},
	types.QualityTierStandard: {
		Scale:         "720:1280",
		Crf:           "23",
		Preset:        "fast",
		SubtitleStyle: "FontName=Arial,FontSize=14,PrimaryColour=&HFFFFFF,OutlineColour=&H000000,Outline=1,Alignment=2,MarginV=60",
	},
}

// renderClips encodes every selected segment concurrently (bounded by
// RenderConcurrency) and fails the job if any single render fails. Progress
// advances through the 70-98 band as clips complete.
func (s Service) renderClips(ctx context.Context, st *jobState, job *types.Job, segments []types.Segment) error {
	profile, ok := renderProfiles[job.QualityTier]
	if !ok {
		profile = renderProfiles[types.QualityTierStandard]
	}

	outputDir, err := storage.JobOutputDir(job.JobId)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}

	concurrency := config.Conf.Pipeline.RenderConcurrency
	if concurrency < 1 || concurrency > 3 {
		concurrency = 3
	}
	renderTimeout := time.Duration(config.Conf.Pipeline.RenderTimeout) * time.Second

	var completed atomic.Int32
	total := len(segments)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i := range segments {
		seg := &segments[i]
		eg.Go(func() error {
			if err := s.renderOne(egCtx, job, seg, profile, renderTimeout); err != nil {
				return err
			}
			done := completed.Add(1)
			progress := 70 + int(done)*28/total
			s.transition(st, job, types.JobStageRendering, progress,
				fmt.Sprintf("🎬 正在渲染片段 rendering clips %d/%d", done, total))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i := range segments {
		if err := storage.UpdateSegment(&segments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s Service) renderOne(ctx context.Context, job *types.Job, seg *types.Segment, profile renderProfile, timeout time.Duration) error {
	srtPath, err := storage.SubtitlePath(job.JobId, seg.SegmentNumber)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}
	lines := util.SplitCaptionLines(seg.CaptionText, captionLineMaxLen)
	srt := util.BuildSrt(lines, seg.Duration)
	if err := os.WriteFile(srtPath, []byte(srt), 0644); err != nil {
		return apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}

	clipPath, err := storage.ClipPath(job.JobId, seg.SegmentNumber)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}
	filter := fmt.Sprintf(
		"scale=%s:force_original_aspect_ratio=decrease,pad=%s:(ow-iw)/2:(oh-ih)/2:black,subtitles=%s:force_style='%s'",
		profile.Scale,
		profile.Scale,
		escapeFilterPath(srtPath),
		profile.SubtitleStyle,
	)

	renderCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		renderCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := []string{
		"-y",
		"-ss", util.FormatFfmpegTime(seg.StartTime),
		"-t", util.FormatFfmpegTime(seg.Duration),
		"-i", job.SourcePath,
		"-vf", filter,
		"-c:v", "libx264",
		"-crf", profile.Crf,
		"-preset", profile.Preset,
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-pix_fmt", "yuv420p",
		clipPath,
	}
	cmd := exec.CommandContext(renderCtx, storage.FfmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if renderCtx.Err() == context.DeadlineExceeded {
			return apperrors.WrapWithDetail(apperrors.ErrRenderTimeout, err,
				fmt.Sprintf("segment %d render timed out", seg.SegmentNumber))
		}
		tail := string(output)
		if len(tail) > 500 {
			tail = tail[len(tail)-500:]
		}
		log.GetLogger().Error("ffmpeg 渲染失败 ffmpeg render failed",
			zap.String("jobId", job.JobId),
			zap.Int("segment", seg.SegmentNumber),
			zap.String("output", tail))
		return apperrors.WrapWithDetail(apperrors.ErrRenderFailure, err, tail)
	}

	seg.ClipPath = clipPath
	if s.Mirror != nil {
		key := fmt.Sprintf("clips/%s/segment_%d.mp4", job.JobId, seg.SegmentNumber)
		url, err := s.Mirror.UploadFile(ctx, key, clipPath)
		if err != nil {
			// Mirror upload is best-effort, local artifact remains authoritative
			log.GetLogger().Warn("片段上传 OSS 失败 clip mirror upload failed",
				zap.String("jobId", job.JobId),
				zap.Int("segment", seg.SegmentNumber),
				zap.Error(err))
		} else {
			seg.ClipUrl = url
		}
	}
	return nil
}

// escapeFilterPath escapes characters the ffmpeg filter parser treats
// specially inside the subtitles= argument.
func escapeFilterPath(path string) string {
	path = strings.ReplaceAll(path, `\`, `\\`)
	path = strings.ReplaceAll(path, `:`, `\:`)
	path = strings.ReplaceAll(path, `'`, `\'`)
	return path
}
