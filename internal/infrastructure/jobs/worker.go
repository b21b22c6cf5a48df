package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"weavebooks/pkg/logger"
)

// CronEntry schedules task on a cron spec.
type CronEntry struct {
	Spec string
	Task *asynq.Task
}

// WorkerConfig collects what the worker needs.
type WorkerConfig struct {
	Redis       asynq.RedisConnOpt
	Concurrency int
	Cron        []CronEntry
	Register    func(mux *asynq.ServeMux)
	// BaseContext is the parent of every task context, e.g. to carry a logger.
	BaseContext func() context.Context
}

// Worker wraps the asynq server and its scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
}

// NewWorker builds the server, the mux and, when cron entries exist, the scheduler.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	srv := asynq.NewServer(cfg.Redis, asynq.Config{
		BaseContext: cfg.BaseContext,
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error(ctx, "task failed", "type", task.Type(), "error", err)
		}),
	})
	mux := asynq.NewServeMux()
	if cfg.Register != nil {
		cfg.Register(mux)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.Redis, &asynq.SchedulerOpts{Location: time.UTC})
		for _, e := range cfg.Cron {
			if e.Spec == "" || e.Task == nil {
				continue
			}
			if _, err := scheduler.Register(e.Spec, e.Task); err != nil {
				return nil, err
			}
		}
	}
	return &Worker{server: srv, mux: mux, scheduler: scheduler}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
		defer w.scheduler.Shutdown()
	}
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
