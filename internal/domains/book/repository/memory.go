package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"library-lending-backend/internal/domains/book/model"
	"library-lending-backend/internal/infrastructure/memstore"

	"github.com/google/uuid"
)

type memoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) RepositoryInterface {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) Create(ctx context.Context, book *model.Book) error {
	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()

	for _, b := range r.store.Books {
		if b.ISBN == book.ISBN {
			return fmt.Errorf("%w: isbn=%s", model.ErrISBNAlreadyExists, book.ISBN)
		}
	}
	cp := *book
	r.store.Books[book.ID] = &cp
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	b, ok := r.store.Books[id]
	if !ok {
		return nil, model.NewBookNotFoundError(id)
	}
	cp := *b
	return &cp, nil
}

func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]model.Book, int, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	all := make([]model.Book, 0, len(r.store.Books))
	for _, b := range r.store.Books {
		all = append(all, *b)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Title == all[j].Title {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].Title < all[j].Title
	})

	total := len(all)
	if offset >= total {
		return []model.Book{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *memoryRepository) DecrementAvailable(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()
	return DecrementLocked(r.store, id)
}

func (r *memoryRepository) IncrementAvailable(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()
	return IncrementLocked(r.store, id)
}

// DecrementLocked / IncrementLocked yêu cầu caller đang giữ store.Mu (write lock).
// Lending memory repository gọi trực tiếp để gộp với thao tác trên lending.

func DecrementLocked(store *memstore.Store, id uuid.UUID) (*model.Book, error) {
	b, ok := store.Books[id]
	if !ok || !b.HasAvailableCopy() {
		return nil, fmt.Errorf("%w: book_id=%s", model.ErrNoCopiesAvailable, id)
	}
	b.AvailableCopies--
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func IncrementLocked(store *memstore.Store, id uuid.UUID) (*model.Book, error) {
	b, ok := store.Books[id]
	if !ok {
		return nil, model.NewBookNotFoundError(id)
	}
	if !b.CanRestock() {
		return nil, fmt.Errorf("%w: book_id=%s", model.ErrCopiesAtTotal, id)
	}
	b.AvailableCopies++
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}
