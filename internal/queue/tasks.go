// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"viralcut/internal/service"
	"viralcut/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleVideoPipelineTask processes one admitted pipeline job.
func (h *TaskHandlers) HandleVideoPipelineTask(ctx context.Context, t *asynq.Task) error {
	var payload PipelinePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing pipeline job",
		zap.String("job_id", payload.JobID))

	if err := h.service.RunJob(ctx, payload.JobID); err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Pipeline job completed",
		zap.String("job_id", payload.JobID))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVideoPipeline, h.HandleVideoPipelineTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
