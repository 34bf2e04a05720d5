package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"viralcut/internal/service"
	"viralcut/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 2
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process pipeline runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-node friendly default config.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// Runner executes admitted jobs with in-memory workers. It is the default
// execution backend when no Redis queue is configured.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan string
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a pipeline runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// Submit queues an admitted job for processing. Implements the submit
// contract the service hands jobs to.
func (r *Runner) Submit(jobId string) error {
	if jobId == "" {
		return errors.New("job id is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- jobId:
		log.GetLogger().Info("[TaskRunner] job submitted", zap.String("job_id", jobId))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case jobId := <-r.queue:
			r.processJob(workerID, jobId)
		}
	}
}

func (r *Runner) processJob(workerID int, jobId string) {
	if err := r.service.RunJob(r.ctx, jobId); err != nil {
		log.GetLogger().Error("[TaskRunner] job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", jobId),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", jobId))
}

// Close stops workers and rejects new jobs.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued jobs waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
