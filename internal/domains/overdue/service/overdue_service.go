package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"library-lending-backend/internal/config"
	lendingModel "library-lending-backend/internal/domains/lending/model"
	notificationModel "library-lending-backend/internal/domains/notification/model"
	"library-lending-backend/internal/domains/overdue/model"
	readerModel "library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/metrics"
	"library-lending-backend/internal/shared"
	"library-lending-backend/pkg/cache"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type OverdueService struct {
	lendings   LendingFinder
	dispatcher Dispatcher
	cache      cache.Cache
	cfg        config.NotificationConfig
	now        func() time.Time
}

func NewOverdueService(
	lendings LendingFinder,
	dispatcher Dispatcher,
	cache cache.Cache,
	cfg config.NotificationConfig,
) *OverdueService {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	if cfg.RunLockTTL <= 0 {
		cfg.RunLockTTL = 10 * time.Minute
	}
	return &OverdueService{
		lendings:   lendings,
		dispatcher: dispatcher,
		cache:      cache,
		cfg:        cfg,
		now:        time.Now,
	}
}

// ========================================
// QUERIES
// ========================================

func (s *OverdueService) FindOverdue(ctx context.Context, asOf time.Time) ([]lendingModel.LendingDetail, error) {
	lendings, err := s.lendings.FindOverdue(ctx, asOf, nil)
	if err != nil {
		return nil, fmt.Errorf("find overdue lendings: %w", err)
	}
	return markOverdue(lendings), nil
}

func (s *OverdueService) ListGrouped(ctx context.Context) ([]model.ReaderGroup, error) {
	lendings, err := s.FindOverdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return GroupByReader(lendings), nil
}

func (s *OverdueService) ListByReader(ctx context.Context, readerID uuid.UUID) ([]lendingModel.LendingDetail, error) {
	lendings, err := s.lendings.FindOverdue(ctx, s.now(), &readerID)
	if err != nil {
		return nil, fmt.Errorf("find overdue lendings for reader: %w", err)
	}
	return markOverdue(lendings), nil
}

func markOverdue(lendings []lendingModel.LendingDetail) []lendingModel.LendingDetail {
	for i := range lendings {
		lendings[i].Overdue = true
	}
	return lendings
}

// GroupByReader gom lending theo readerId, giữ thứ tự reader xuất hiện lần đầu
func GroupByReader(lendings []lendingModel.LendingDetail) []model.ReaderGroup {
	groups := make([]model.ReaderGroup, 0)
	index := make(map[uuid.UUID]int)

	for _, l := range lendings {
		i, ok := index[l.ReaderID]
		if !ok {
			summary := readerModel.Summary{ID: l.ReaderID}
			if l.Reader != nil {
				summary = *l.Reader
			}
			groups = append(groups, model.ReaderGroup{Reader: summary})
			i = len(groups) - 1
			index[l.ReaderID] = i
		}
		groups[i].Lendings = append(groups[i].Lendings, l)
	}
	return groups
}

// DistinctReaderIDs: mỗi reader đúng một lần, thứ tự xuất hiện lần đầu
func DistinctReaderIDs(lendings []lendingModel.LendingDetail) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lendings))
	ids := make([]uuid.UUID, 0)
	for _, l := range lendings {
		if _, ok := seen[l.ReaderID]; ok {
			continue
		}
		seen[l.ReaderID] = struct{}{}
		ids = append(ids, l.ReaderID)
	}
	return ids
}

// ========================================
// NOTIFY
// ========================================

// NotifyOverdueReaders dispatch một lần cho mỗi reader đang có lending quá hạn.
// Lỗi của từng reader chỉ được ghi vào report, không dừng các reader còn lại.
func (s *OverdueService) NotifyOverdueReaders(ctx context.Context, triggeredBy string) (*model.NotifyReport, error) {
	release, err := s.acquireRunLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report := &model.NotifyReport{
		TriggeredBy: triggeredBy,
		StartedAt:   s.now().UTC(),
	}
	timer := time.Now()
	defer func() {
		metrics.NotifyRunDuration.Observe(time.Since(timer).Seconds())
	}()

	lendings, err := s.FindOverdue(ctx, report.StartedAt)
	if err != nil {
		return nil, err
	}
	readerIDs := DistinctReaderIDs(lendings)
	metrics.OverdueReadersGauge.Set(float64(len(readerIDs)))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.Parallelism)

	for _, readerID := range readerIDs {
		readerID := readerID
		g.Go(func() error {
			outcome, err := s.dispatch(ctx, readerID)

			mu.Lock()
			defer mu.Unlock()
			report.Attempted++
			switch {
			case err != nil:
				report.Failed++
				report.Failures = append(report.Failures, model.DispatchFailure{ReaderID: readerID, Error: err.Error()})
				metrics.NotificationsTotal.WithLabelValues(string(notificationModel.OutcomeFailed)).Inc()
				logger.ErrorWithFields("Overdue notification failed", err, map[string]interface{}{
					"reader_id": readerID,
				})
			case outcome == notificationModel.OutcomeSkipped:
				report.Skipped++
				metrics.NotificationsTotal.WithLabelValues(string(notificationModel.OutcomeSkipped)).Inc()
			default:
				report.Sent++
				metrics.NotificationsTotal.WithLabelValues(string(notificationModel.OutcomeSent)).Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now().UTC()
	logger.Info("Overdue notification run finished", map[string]interface{}{
		"triggered_by": triggeredBy,
		"attempted":    report.Attempted,
		"sent":         report.Sent,
		"skipped":      report.Skipped,
		"failed":       report.Failed,
	})
	return report, nil
}

// dispatch cô lập panic của dispatcher thành lỗi của riêng reader đó
func (s *OverdueService) dispatch(ctx context.Context, readerID uuid.UUID) (outcome notificationModel.Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			outcome = notificationModel.OutcomeFailed
			err = fmt.Errorf("dispatcher panic: %v", p)
		}
	}()
	return s.dispatcher.Send(ctx, readerID)
}

// acquireRunLock chặn hai lần notify chạy chồng nhau (API + scheduler).
// Cache lỗi thì vẫn chạy, chỉ log warning.
func (s *OverdueService) acquireRunLock(ctx context.Context) (func(), error) {
	noop := func() {}
	if s.cache == nil {
		return noop, nil
	}

	token := uuid.NewString()
	acquired, err := s.cache.SetNX(ctx, shared.CacheKeyNotifyRunLock, token, s.cfg.RunLockTTL)
	if err != nil {
		logger.Warn("Notify run lock unavailable, continuing without lock", map[string]interface{}{
			"error": err.Error(),
		})
		return noop, nil
	}
	if !acquired {
		return nil, model.ErrNotifyInProgress
	}

	return func() {
		// ctx của request có thể đã bị cancel
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.ReleaseLock(releaseCtx, shared.CacheKeyNotifyRunLock, token); err != nil {
			logger.Warn("Failed to release notify run lock", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}, nil
}
