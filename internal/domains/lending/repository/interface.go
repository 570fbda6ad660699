package repository

import (
	"context"
	"time"

	"library-lending-backend/internal/domains/lending/model"

	"github.com/google/uuid"
)

// RepositoryInterface - Lending Ledger storage.
// Checkout và Close là atomic unit gồm cả lending và available_copies của book.
type RepositoryInterface interface {
	// Checkout giảm available_copies có điều kiện và insert lending trong cùng một unit.
	// Trả về ErrBookUnavailable nếu book không tồn tại hoặc hết bản.
	Checkout(ctx context.Context, lending *model.Lending) (*model.Lending, error)

	// Close đóng lending đang mở (status theo returnedAt so với due_date) và trả lại một bản.
	// Book không còn tồn tại không chặn việc đóng lending.
	Close(ctx context.Context, id uuid.UUID, returnedAt time.Time, actorID uuid.UUID) (*model.Lending, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.LendingDetail, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.LendingDetail, error)

	// FindOverdue: (status = borrowed AND due_date < asOf) OR status = overdue
	FindOverdue(ctx context.Context, asOf time.Time, readerID *uuid.UUID) ([]model.LendingDetail, error)
}
