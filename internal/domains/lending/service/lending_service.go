package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-lending-backend/internal/config"
	auditModel "library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/internal/domains/lending/model"
	"library-lending-backend/internal/domains/lending/repository"
	readerModel "library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/metrics"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
)

type LendingService struct {
	repo    repository.RepositoryInterface
	readers ReaderFinder
	audit   AuditRecorder
	cfg     config.LendingConfig
	now     func() time.Time
}

func NewLendingService(
	repo repository.RepositoryInterface,
	readers ReaderFinder,
	audit AuditRecorder,
	cfg config.LendingConfig,
) *LendingService {
	if cfg.DefaultLoanDays <= 0 {
		cfg.DefaultLoanDays = model.DefaultLoanDays
	}
	if cfg.MaxLoanDays < cfg.DefaultLoanDays {
		cfg.MaxLoanDays = 365
	}
	return &LendingService{
		repo:    repo,
		readers: readers,
		audit:   audit,
		cfg:     cfg,
		now:     time.Now,
	}
}

// ========================================
// CHECKOUT
// ========================================

// Checkout tạo lending mới và giữ một bản của book.
// loanDays phải nằm trong [1, MaxLoanDays]; default do caller chọn.
func (s *LendingService) Checkout(ctx context.Context, actorID, readerID, bookID uuid.UUID, loanDays int) (*model.Lending, error) {
	if loanDays < 1 || loanDays > s.cfg.MaxLoanDays {
		metrics.CheckoutsTotal.WithLabelValues("invalid").Inc()
		return nil, model.NewValidationError(
			fmt.Errorf("days must be between 1 and %d", s.cfg.MaxLoanDays))
	}

	if _, err := s.readers.FindByID(ctx, readerID); err != nil {
		if errors.Is(err, readerModel.ErrReaderNotFound) {
			metrics.CheckoutsTotal.WithLabelValues("reader_not_found").Inc()
			return nil, fmt.Errorf("%w: id=%s", model.ErrReaderNotFound, readerID)
		}
		metrics.CheckoutsTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to load reader for checkout", err)
		return nil, err
	}

	lending := model.NewLending(readerID, bookID, actorID, s.now().UTC(), loanDays)

	created, err := s.repo.Checkout(ctx, lending)
	if err != nil {
		outcome := "error"
		if errors.Is(err, model.ErrBookUnavailable) {
			outcome = "unavailable"
		}
		metrics.CheckoutsTotal.WithLabelValues(outcome).Inc()
		logUnexpected("Checkout failed", err, map[string]interface{}{
			"reader_id": readerID,
			"book_id":   bookID,
		})
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues("success").Inc()
	s.audit.Record(auditModel.ActionCreate, actorID, auditModel.TargetLending, created.ID)

	logger.Info("Book checked out", map[string]interface{}{
		"lending_id": created.ID,
		"reader_id":  created.ReaderID,
		"book_id":    created.BookID,
		"due_date":   created.DueDate,
	})
	return created, nil
}

// ========================================
// RETURN
// ========================================

func (s *LendingService) Return(ctx context.Context, actorID, lendingID uuid.UUID) (*model.ReturnResult, error) {
	returnedAt := s.now().UTC()

	closed, err := s.repo.Close(ctx, lendingID, returnedAt, actorID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrLendingNotFound):
			metrics.ReturnsTotal.WithLabelValues("not_found").Inc()
		case errors.Is(err, model.ErrAlreadyReturned):
			metrics.ReturnsTotal.WithLabelValues("already_returned").Inc()
		case errors.Is(err, model.ErrCopyCountInvariant):
			metrics.ReturnsTotal.WithLabelValues("error").Inc()
			metrics.CopyCountViolations.Inc()
			logger.ErrorWithFields("Copy count invariant violated on return", err, map[string]interface{}{
				"lending_id": lendingID,
			})
		default:
			metrics.ReturnsTotal.WithLabelValues("error").Inc()
			logUnexpected("Return failed", err, map[string]interface{}{
				"lending_id": lendingID,
			})
		}
		return nil, err
	}

	wasOverdue := closed.Status == model.StatusReturnedLate
	result := &model.ReturnResult{
		Lending:     closed,
		WasOverdue:  wasOverdue,
		DaysOverdue: model.DaysOverdue(closed.DueDate, returnedAt),
		LateFee:     model.LateFee(closed.DueDate, returnedAt, s.cfg.LateFeePerDay),
		Currency:    s.cfg.Currency,
	}

	if wasOverdue {
		metrics.ReturnsTotal.WithLabelValues("returned_late").Inc()
	} else {
		metrics.ReturnsTotal.WithLabelValues("returned").Inc()
	}
	s.audit.Record(auditModel.ActionReturn, actorID, auditModel.TargetLending, closed.ID)

	logger.Info("Book returned", map[string]interface{}{
		"lending_id":   closed.ID,
		"status":       closed.Status,
		"days_overdue": result.DaysOverdue,
	})
	return result, nil
}

// ========================================
// READ
// ========================================

func (s *LendingService) GetLending(ctx context.Context, id uuid.UUID) (*model.LendingDetail, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Overdue = d.IsOverdueAt(s.now())
	return d, nil
}

func (s *LendingService) ListLendings(ctx context.Context) ([]model.LendingDetail, error) {
	return s.list(ctx, model.ListFilter{})
}

func (s *LendingService) ListByReader(ctx context.Context, readerID uuid.UUID) ([]model.LendingDetail, error) {
	return s.list(ctx, model.ListFilter{ReaderID: &readerID})
}

func (s *LendingService) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.LendingDetail, error) {
	return s.list(ctx, model.ListFilter{BookID: &bookID})
}

func (s *LendingService) list(ctx context.Context, filter model.ListFilter) ([]model.LendingDetail, error) {
	lendings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range lendings {
		lendings[i].Overdue = lendings[i].IsOverdueAt(now)
	}
	return lendings, nil
}

// logUnexpected bỏ qua lỗi precondition (caller tự xử lý), chỉ log system failure
func logUnexpected(msg string, err error, fields map[string]interface{}) {
	if model.IsPreconditionError(err) {
		return
	}
	logger.ErrorWithFields(msg, err, fields)
}
