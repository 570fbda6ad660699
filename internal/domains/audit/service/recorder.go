package service

import (
	"context"
	"sync"
	"time"

	"library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/internal/domains/audit/repository"
	"library-lending-backend/internal/metrics"
	"library-lending-backend/internal/shared/utils"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	// Record ghi audit bất đồng bộ, lỗi chỉ được log
	Record(action model.Action, performedBy uuid.UUID, targetModel string, targetID uuid.UUID)
	List(ctx context.Context, req model.ListAuditRequest) ([]model.Entry, int, error)
	// Wait chờ các lần ghi đang chạy (graceful shutdown, test)
	Wait()
}

type Recorder struct {
	repo         repository.RepositoryInterface
	writeTimeout time.Duration
	wg           sync.WaitGroup
	now          func() time.Time
}

func NewRecorder(repo repository.RepositoryInterface, writeTimeout time.Duration) *Recorder {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Recorder{
		repo:         repo,
		writeTimeout: writeTimeout,
		now:          time.Now,
	}
}

// Record không nhận ctx của request: request có thể đã kết thúc khi goroutine chạy.
func (r *Recorder) Record(action model.Action, performedBy uuid.UUID, targetModel string, targetID uuid.UUID) {
	entry := model.NewEntry(action, performedBy, targetModel, targetID, r.now().UTC())

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()

		if err := r.repo.Insert(ctx, entry); err != nil {
			metrics.AuditWriteFailures.Inc()
			logger.ErrorWithFields("Failed to write audit log", err, map[string]interface{}{
				"action":    entry.Action,
				"target_id": entry.TargetID,
			})
		}
	}()
}

func (r *Recorder) List(ctx context.Context, req model.ListAuditRequest) ([]model.Entry, int, error) {
	limit, offset := utils.NormalizePage(req.Limit, req.Offset)
	return r.repo.List(ctx, limit, offset)
}

func (r *Recorder) Wait() {
	r.wg.Wait()
}
