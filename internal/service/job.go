package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"viralcut/config"
	"viralcut/internal/dto"
	"viralcut/internal/storage"
	"viralcut/internal/types"
	"viralcut/log"
	apperrors "viralcut/pkg/errors"
)

const localSourcePrefix = "local:"

// transition advances the job to a new stage, publishes the in-memory
// snapshot and persists the durable row. The whole update runs under the
// state lock: render workers report progress concurrently, and the Job
// mutation plus SaveJob must not interleave between writers.
func (s Service) transition(st *jobState, job *types.Job, stage types.JobStage, progress int, message string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	snap := st.publishLocked(&types.JobSnapshot{
		JobId:    job.JobId,
		Stage:    stage,
		Progress: progress,
		Message:  message,
	})

	job.Stage = string(snap.Stage)
	job.Progress = snap.Progress
	job.Message = snap.Message
	if err := storage.SaveJob(job); err != nil {
		log.GetLogger().Error("保存任务进度失败 failed to persist job progress",
			zap.String("jobId", job.JobId), zap.Error(err))
	}
}

func (s Service) failJob(st *jobState, job *types.Job, cause error) {
	st.mu.Lock()
	message := apperrors.GetMessage(cause)
	snap := st.publishLocked(&types.JobSnapshot{
		JobId:    job.JobId,
		Stage:    types.JobStageError,
		Progress: job.Progress,
		Message:  message,
		Error:    message,
	})

	job.Stage = string(types.JobStageError)
	job.Progress = snap.Progress
	job.Message = message
	job.FailReason = cause.Error()
	if err := storage.SaveJob(job); err != nil {
		log.GetLogger().Error("保存失败状态失败 failed to persist job failure",
			zap.String("jobId", job.JobId), zap.Error(err))
	}
	st.mu.Unlock()
	log.GetLogger().Error("任务失败 job failed",
		zap.String("jobId", job.JobId), zap.Error(cause))
}

// CreateJob validates and admits an uploaded video synchronously, then hands
// the admitted job to the execution backend. A rejected video never becomes
// a job: the caller gets the admission error and nothing is persisted.
func (s Service) CreateJob(ctx context.Context, req dto.CreateJobReq) (*dto.CreateJobResData, error) {
	if !strings.HasPrefix(req.Url, localSourcePrefix) {
		return nil, apperrors.WrapWithDetail(apperrors.ErrInvalidParams, nil, "url must use the local: prefix")
	}
	sourcePath := strings.TrimPrefix(req.Url, localSourcePrefix)

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnreadableMedia, err)
	}
	if maxSize := config.Conf.App.MaxFileSize; maxSize > 0 && info.Size() > maxSize {
		return nil, apperrors.WrapWithDetail(apperrors.ErrFileTooLarge, nil,
			fmt.Sprintf("file size %d exceeds limit %d", info.Size(), maxSize))
	}

	media, err := probeMedia(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	isPremium, err := s.Accounts.IsPremium(ctx, req.AccountRef)
	if err != nil {
		log.GetLogger().Warn("账户查询失败，按免费层处理 account lookup failed, treating as free tier",
			zap.String("accountRef", req.AccountRef), zap.Error(err))
		isPremium = false
	}
	limitOverride, err := s.Accounts.MaxDuration(ctx, req.AccountRef)
	if err != nil {
		limitOverride = 0
	}

	adm, err := EvaluateAdmission(isPremium, media.Duration, limitOverride)
	if err != nil {
		return nil, err
	}

	jobId := uuid.NewString()
	jobDir, err := storage.JobDir(jobId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFileWriteError, err)
	}

	job := &types.Job{
		JobId:       jobId,
		AccountRef:  req.AccountRef,
		SourcePath:  sourcePath,
		Duration:    media.Duration,
		QualityTier: adm.QualityTier,
		MaxClips:    adm.MaxClips,
		Stage:       string(types.JobStageAdmitted),
		Progress:    5,
		Message:     "📋 任务已受理 job admitted",
	}
	if err := storage.SaveJob(job); err != nil {
		return nil, err
	}
	registerJobState(jobId, &types.JobSnapshot{
		JobId:    jobId,
		Stage:    types.JobStageAdmitted,
		Progress: 5,
		Message:  job.Message,
	})

	if s.Submitter != nil {
		if err := s.Submitter.Submit(jobId); err != nil {
			s.failJobById(jobId, err)
			return nil, err
		}
	} else {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.GetLogger().Error("任务协程崩溃 job goroutine panicked",
						zap.String("jobId", jobId), zap.Any("panic", r))
				}
			}()
			_ = s.RunJob(context.Background(), jobId)
		}()
	}

	log.GetLogger().Info("任务已创建 job created",
		zap.String("jobId", jobId),
		zap.Float64("duration", media.Duration),
		zap.String("tier", adm.QualityTier))
	return &dto.CreateJobResData{
		JobId:       jobId,
		Duration:    media.Duration,
		QualityTier: adm.QualityTier,
		MaxClips:    adm.MaxClips,
	}, nil
}

func (s Service) failJobById(jobId string, cause error) {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return
	}
	st, ok := lookupJobState(jobId)
	if !ok {
		st = registerJobState(jobId, &types.JobSnapshot{JobId: jobId})
	}
	s.failJob(st, job, cause)
}

// RunJob drives one admitted job through the whole pipeline. It is invoked
// by the in-process runner or a queue worker; either way there is exactly
// one writer per job.
func (s Service) RunJob(ctx context.Context, jobId string) (err error) {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return err
	}
	st, ok := lookupJobState(jobId)
	if !ok {
		st = registerJobState(jobId, &types.JobSnapshot{
			JobId:    jobId,
			Stage:    types.JobStage(job.Stage),
			Progress: job.Progress,
			Message:  job.Message,
		})
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	st.setCancelFunc(cancel)

	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Error("任务执行崩溃 job pipeline panicked",
				zap.String("jobId", jobId), zap.Any("panic", r))
			err = fmt.Errorf("job pipeline panicked: %v", r)
			s.failJob(st, job, err)
		}
	}()

	checkCancelled := func() bool {
		if st.cancelRequested.Load() || runCtx.Err() != nil {
			s.failJob(st, job, apperrors.ErrJobCancelled)
			return true
		}
		return false
	}

	// Analysis: 5 -> 40
	s.transition(st, job, types.JobStageAnalyzing, 10, "🤖 AI 正在分析视频 analyzing video")
	analysis, err := s.Analyzer.AnalyzeVideo(runCtx, types.AnalysisRequest{
		JobId:       job.JobId,
		Duration:    job.Duration,
		QualityTier: job.QualityTier,
		MaxClips:    job.MaxClips,
	})
	if err != nil {
		if checkCancelled() {
			return apperrors.ErrJobCancelled
		}
		s.failJob(st, job, err)
		return err
	}
	if err := storage.SaveAnalysis(analysis); err != nil {
		s.failJob(st, job, err)
		return err
	}
	s.transition(st, job, types.JobStageAnalyzing, 40, "✅ 视频分析完成 analysis complete")
	if checkCancelled() {
		return apperrors.ErrJobCancelled
	}

	// Segment selection: 40 -> 55
	s.transition(st, job, types.JobStageSegmenting, 45, "✂️ 正在挑选高光片段 selecting highlight segments")
	segments := SelectSegments(analysis.CandidateMoments, job.MaxClips)
	if len(segments) == 0 {
		err := apperrors.WrapWithDetail(apperrors.ErrAnalysisParseFailed, nil, "no viable segments selected")
		s.failJob(st, job, err)
		return err
	}
	for i := range segments {
		segments[i].JobId = job.JobId
	}
	if err := storage.SaveSegments(segments); err != nil {
		s.failJob(st, job, err)
		return err
	}
	s.transition(st, job, types.JobStageSegmenting, 55,
		fmt.Sprintf("✂️ 已选定 %d 个片段 selected %d segments", len(segments), len(segments)))
	if checkCancelled() {
		return apperrors.ErrJobCancelled
	}

	// Caption and script synthesis: 55 -> 70. Soft-fails internally.
	s.transition(st, job, types.JobStageGenerating, 60, "✍️ 正在生成文案 generating captions")
	s.synthesizeSegments(runCtx, job, analysis, segments)
	if err := storage.SaveSegments(segments); err != nil {
		s.failJob(st, job, err)
		return err
	}
	s.transition(st, job, types.JobStageGenerating, 70, "✍️ 文案生成完成 captions ready")
	if checkCancelled() {
		return apperrors.ErrJobCancelled
	}

	// Rendering: 70 -> 98. Once started, cancellation waits for in-flight
	// encodes to finish and then discards the outputs.
	st.renderingStarted.Store(true)
	s.transition(st, job, types.JobStageRendering, 72, "🎬 正在渲染切片 rendering clips")
	if err := s.renderClips(runCtx, st, job, segments); err != nil {
		if checkCancelled() {
			s.discardOutputs(job.JobId)
			return apperrors.ErrJobCancelled
		}
		s.failJob(st, job, err)
		return err
	}
	if st.cancelRequested.Load() {
		s.discardOutputs(job.JobId)
		s.failJob(st, job, apperrors.ErrJobCancelled)
		return apperrors.ErrJobCancelled
	}

	s.transition(st, job, types.JobStageCompleted, 100, "🎉 全部切片已完成 all clips ready")
	log.GetLogger().Info("任务完成 job completed",
		zap.String("jobId", jobId), zap.Int("segments", len(segments)))
	return nil
}

func (s Service) discardOutputs(jobId string) {
	outDir, err := storage.JobOutputDir(jobId)
	if err != nil {
		return
	}
	if err := os.RemoveAll(outDir); err != nil {
		log.GetLogger().Warn("清理取消任务产物失败 failed to discard cancelled outputs",
			zap.String("jobId", jobId), zap.Error(err))
	}
}

// GetStatus serves the in-memory snapshot when the job is live and falls
// back to the durable row for restarted servers.
func (s Service) GetStatus(jobId string) (*dto.JobStatusResData, error) {
	if st, ok := lookupJobState(jobId); ok {
		snap := st.current()
		return &dto.JobStatusResData{
			JobId:    snap.JobId,
			Stage:    string(snap.Stage),
			Progress: snap.Progress,
			Message:  snap.Message,
			Error:    snap.Error,
		}, nil
	}

	job, err := storage.GetJob(jobId)
	if err != nil {
		return nil, err
	}
	return &dto.JobStatusResData{
		JobId:    job.JobId,
		Stage:    job.Stage,
		Progress: job.Progress,
		Message:  job.Message,
		Error:    job.FailReason,
	}, nil
}

// Snapshot returns the live progress view for push channels.
func (s Service) Snapshot(jobId string) (*types.JobSnapshot, error) {
	if st, ok := lookupJobState(jobId); ok {
		return st.current(), nil
	}
	job, err := storage.GetJob(jobId)
	if err != nil {
		return nil, err
	}
	return &types.JobSnapshot{
		JobId:    job.JobId,
		Stage:    types.JobStage(job.Stage),
		Progress: job.Progress,
		Message:  job.Message,
		Error:    job.FailReason,
	}, nil
}

// GetAnalysis returns the viral analysis of a completed job.
func (s Service) GetAnalysis(jobId string) (*dto.AnalysisResData, error) {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return nil, err
	}
	if job.Stage != string(types.JobStageCompleted) {
		return nil, apperrors.ErrNotReady
	}
	if job.Analysis == nil {
		return nil, apperrors.ErrNotReady
	}

	a := job.Analysis
	return &dto.AnalysisResData{
		JobId:             job.JobId,
		ViralScore:        a.ViralScore,
		ContentType:       a.ContentType,
		TargetAudience:    a.TargetAudience,
		ViralTechniques:   a.ViralTechniques,
		EngagementFactors: a.EngagementFactors,
		ContentSummary:    a.ContentSummary,
		AnalysisText:      a.AnalysisText,
		CandidateMoments: lo.Map(a.CandidateMoments, func(cm types.CandidateMoment, _ int) dto.CandidateMoment {
			return dto.CandidateMoment{
				Start:     cm.Start,
				End:       cm.End,
				Score:     cm.Score,
				Rationale: cm.Rationale,
			}
		}),
	}, nil
}

// GetSegments returns the ranked segment list of a completed job.
func (s Service) GetSegments(jobId string) ([]dto.SegmentResData, error) {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return nil, err
	}
	if job.Stage != string(types.JobStageCompleted) {
		return nil, apperrors.ErrNotReady
	}

	return lo.Map(job.Segments, func(seg types.Segment, _ int) dto.SegmentResData {
		return dto.SegmentResData{
			SegmentNumber:  seg.SegmentNumber,
			StartTime:      seg.StartTime,
			EndTime:        seg.EndTime,
			Duration:       seg.Duration,
			HighlightScore: seg.HighlightScore,
			CaptionText:    seg.CaptionText,
			AudioScript:    seg.AudioScript,
			ClipUrl:        seg.ClipUrl,
		}
	}), nil
}

// ClipArtifactPath resolves a rendered clip on disk, for download handlers.
func (s Service) ClipArtifactPath(jobId string, segmentNumber int) (string, error) {
	job, err := storage.GetJob(jobId)
	if err != nil {
		return "", err
	}
	if job.Stage != string(types.JobStageCompleted) {
		return "", apperrors.ErrNotReady
	}
	if segmentNumber < 1 || segmentNumber > len(job.Segments) {
		return "", apperrors.ErrArtifactNotFound
	}

	clipPath, err := storage.ClipPath(jobId, segmentNumber)
	if err != nil {
		return "", apperrors.ErrArtifactNotFound
	}
	if _, err := os.Stat(clipPath); err != nil {
		return "", apperrors.Wrap(apperrors.ErrArtifactNotFound, err)
	}
	return clipPath, nil
}

// DeleteJob removes the job record and everything on disk. Deleting a job
// that does not exist is a no-op, deletion is idempotent.
func (s Service) DeleteJob(jobId string) error {
	if jobDir, err := storage.JobDir(jobId); err == nil {
		if err := os.RemoveAll(jobDir); err != nil {
			// Keep going: the DB row still gets removed.
			log.GetLogger().Warn("删除任务目录失败 failed to remove job directory",
				zap.String("jobId", jobId), zap.Error(err))
		}
	}
	if err := storage.DeleteJob(jobId); err != nil {
		return err
	}
	dropJobState(jobId)
	return nil
}

// CancelJob requests cancellation. Before rendering the pipeline aborts at
// the next stage boundary; once rendering has started, in-flight encodes
// finish and the outputs are discarded.
func (s Service) CancelJob(jobId string) error {
	st, ok := lookupJobState(jobId)
	if !ok {
		if _, err := storage.GetJob(jobId); err != nil {
			return err
		}
		// The row exists but no pipeline is driving it (server restarted).
		// There is nothing running to cancel either way.
		return apperrors.ErrJobNotCancelable
	}

	snap := st.current()
	if snap != nil && snap.Stage.Terminal() {
		return apperrors.ErrJobNotCancelable
	}

	st.cancelRequested.Store(true)
	if !st.renderingStarted.Load() {
		st.triggerCancel()
	}
	log.GetLogger().Info("收到取消请求 cancel requested",
		zap.String("jobId", jobId),
		zap.Bool("rendering", st.renderingStarted.Load()))
	return nil
}

// JobHistory lists recent jobs, newest first.
func (s Service) JobHistory(limit int) ([]dto.JobHistoryItem, error) {
	jobs, err := storage.GetJobHistory(limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(jobs, func(job types.Job, _ int) dto.JobHistoryItem {
		return dto.JobHistoryItem{
			JobId:       job.JobId,
			Stage:       job.Stage,
			Progress:    job.Progress,
			Duration:    job.Duration,
			QualityTier: job.QualityTier,
			CreateTime:  job.CreateTime.Format("2006-01-02 15:04:05"),
		}
	}), nil
}
