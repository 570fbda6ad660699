package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	bookModel "library-lending-backend/internal/domains/book/model"
	bookRepository "library-lending-backend/internal/domains/book/repository"
	"library-lending-backend/internal/domains/lending/model"
	"library-lending-backend/internal/infrastructure/memstore"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
)

// memoryRepository: mọi thao tác ghi chạy dưới store.Mu, book và lending
// được cập nhật trong cùng một critical section.
type memoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) RepositoryInterface {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) Checkout(ctx context.Context, lending *model.Lending) (*model.Lending, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()

	if _, err := bookRepository.DecrementLocked(r.store, lending.BookID); err != nil {
		if errors.Is(err, bookModel.ErrNoCopiesAvailable) {
			return nil, model.NewBookUnavailableError(lending.BookID)
		}
		return nil, err
	}

	stored := *lending
	r.store.Lendings[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memoryRepository) Close(ctx context.Context, id uuid.UUID, returnedAt time.Time, actorID uuid.UUID) (*model.Lending, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()

	l, ok := r.store.Lendings[id]
	if !ok {
		return nil, model.NewLendingNotFoundError(id)
	}
	if !l.Status.IsOpen() {
		return nil, model.NewAlreadyReturnedError(id, l.Status)
	}

	// kiểm tra book trước khi sửa lending để lỗi invariant không để lại state dở dang
	if _, err := bookRepository.IncrementLocked(r.store, l.BookID); err != nil {
		switch {
		case bookModel.IsNotFoundError(err):
			logger.Warn("Returned lending references a missing book", map[string]interface{}{
				"lending_id": l.ID,
				"book_id":    l.BookID,
			})
		case errors.Is(err, bookModel.ErrCopiesAtTotal):
			return nil, fmt.Errorf("%w: book_id=%s lending_id=%s: %v",
				model.ErrCopyCountInvariant, l.BookID, l.ID, err)
		default:
			return nil, err
		}
	}

	at := returnedAt
	actor := actorID
	l.Status = l.CloseStatus(at)
	l.ReturnedDate = &at
	l.ReturnedBy = &actor

	out := *l
	return &out, nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LendingDetail, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	l, ok := r.store.Lendings[id]
	if !ok {
		return nil, model.NewLendingNotFoundError(id)
	}
	d := r.detail(l)
	return &d, nil
}

func (r *memoryRepository) List(ctx context.Context, filter model.ListFilter) ([]model.LendingDetail, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	out := make([]model.LendingDetail, 0)
	for _, l := range r.store.Lendings {
		if filter.ReaderID != nil && l.ReaderID != *filter.ReaderID {
			continue
		}
		if filter.BookID != nil && l.BookID != *filter.BookID {
			continue
		}
		out = append(out, r.detail(l))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].BorrowedDate.Equal(out[j].BorrowedDate) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].BorrowedDate.After(out[j].BorrowedDate)
	})
	return out, nil
}

func (r *memoryRepository) FindOverdue(ctx context.Context, asOf time.Time, readerID *uuid.UUID) ([]model.LendingDetail, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	out := make([]model.LendingDetail, 0)
	for _, l := range r.store.Lendings {
		if readerID != nil && l.ReaderID != *readerID {
			continue
		}
		borrowedPastDue := l.Status == model.StatusBorrowed && l.DueDate.Before(asOf)
		if borrowedPastDue || l.Status == model.StatusOverdue {
			out = append(out, r.detail(l))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

// caller giữ store.Mu
func (r *memoryRepository) detail(l *model.Lending) model.LendingDetail {
	return model.LendingDetail{
		Lending: *l,
		Book:    r.store.BookSummary(l.BookID),
		Reader:  r.store.ReaderSummary(l.ReaderID),
	}
}
