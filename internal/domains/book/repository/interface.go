package repository

import (
	"context"

	"library-lending-backend/internal/domains/book/model"

	"github.com/google/uuid"
)

// RepositoryInterface - Catalog Store
type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, limit, offset int) ([]model.Book, int, error)

	// DecrementAvailable giảm 1 bản nếu AvailableCopies > 0.
	// Trả về ErrNoCopiesAvailable khi hết bản hoặc book không tồn tại.
	DecrementAvailable(ctx context.Context, id uuid.UUID) (*model.Book, error)
	// IncrementAvailable tăng 1 bản nếu AvailableCopies < TotalCopies.
	// ErrBookNotFound khi book không tồn tại, ErrCopiesAtTotal khi đã đủ bản.
	IncrementAvailable(ctx context.Context, id uuid.UUID) (*model.Book, error)
}
