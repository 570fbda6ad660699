package queue

import (
	"fmt"
	"time"

	"library-lending-backend/internal/config"
	"library-lending-backend/internal/domains/overdue/job"
	"library-lending-backend/internal/shared"
	"library-lending-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// Scheduler là trigger bên ngoài của overdue scanner: core không có timer riêng,
// worker enqueue task theo cron và NotifyOverdueHandler gọi scanner.
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerNotifyOverdueReadersJob()
}

// ================================================
// JOB: Notify Overdue Readers (default daily at 8 AM UTC)
// ================================================
func (s *Scheduler) registerNotifyOverdueReadersJob() error {
	task, err := job.NewNotifyOverdueTask("", time.Time{})
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(
		s.jobConfig.OverdueNotifyCron,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(s.jobConfig.OverdueNotifyRetry),
		asynq.Timeout(s.jobConfig.OverdueNotifyTimeout),
	)
	if err != nil {
		logger.Error("Failed to register NotifyOverdueReaders job", err)
		return fmt.Errorf("register %s: %w", shared.TypeNotifyOverdueReaders, err)
	}

	logger.Info("✓ Registered NotifyOverdueReaders", map[string]interface{}{
		"cron":     s.jobConfig.OverdueNotifyCron,
		"entry_id": entryID,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
