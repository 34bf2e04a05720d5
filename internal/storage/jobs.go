package storage

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"viralcut/internal/types"
	apperrors "viralcut/pkg/errors"
)

func SaveJob(job *types.Job) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert by JobId: the primary key is internal, callers address jobs by
	// the public identifier.
	var existing types.Job
	result := DB.Where("job_id = ?", job.JobId).First(&existing)

	if result.Error == nil {
		job.Id = existing.Id // Preserve ID
		return DB.Save(job).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(job).Error
	}
	return result.Error
}

func GetJob(jobId string) (*types.Job, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var job types.Job
	if err := DB.Preload("Analysis").Preload("Segments").Where("job_id = ?", jobId).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrDBError, err)
	}
	return &job, nil
}

func SaveAnalysis(analysis *types.ViralAnalysis) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(analysis).Error
}

// SaveSegments upserts the segment rows. The pipeline writes the same slice
// more than once (after selection, again after synthesis); gorm backfills
// the autoincrement ids on the first insert, so later writes must update in
// place instead of re-inserting.
func SaveSegments(segments []types.Segment) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	if len(segments) == 0 {
		return nil
	}
	return DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&segments).Error
}

func UpdateSegment(segment *types.Segment) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(segment).Error
}

func GetJobHistory(limit int) ([]types.Job, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var jobs []types.Job
	if err := DB.Order("create_time desc").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// DeleteJob removes the job row and its analysis/segments. Idempotent: a
// second call on the same id is a no-op.
func DeleteJob(jobId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobId).Delete(&types.Segment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", jobId).Delete(&types.ViralAnalysis{}).Error; err != nil {
			return err
		}
		return tx.Where("job_id = ?", jobId).Delete(&types.Job{}).Error
	})
}

// MarkStaleJobs marks all jobs stuck in a non-terminal stage as failed.
// This should be called on server startup to clean up zombie jobs.
func MarkStaleJobs() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.Job{}).
		Where("stage NOT IN ?", []string{string(types.JobStageCompleted), string(types.JobStageError)}).
		Updates(map[string]interface{}{
			"stage":       string(types.JobStageError),
			"fail_reason": "服务重启，任务被中断 Job interrupted by server restart",
			"message":     "任务中断 Job Interrupted",
		})
	return result.RowsAffected, result.Error
}
