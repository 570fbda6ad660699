package repository

import (
	"context"
	"fmt"
	"sort"

	"library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/infrastructure/memstore"

	"github.com/google/uuid"
)

type memoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) RepositoryInterface {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) Create(ctx context.Context, reader *model.Reader) error {
	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()

	if reader.Email != "" {
		for _, existing := range r.store.Readers {
			if existing.Email == reader.Email {
				return fmt.Errorf("%w: %s", model.ErrEmailAlreadyExists, reader.Email)
			}
		}
	}
	cp := *reader
	r.store.Readers[reader.ID] = &cp
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reader, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	reader, ok := r.store.Readers[id]
	if !ok {
		return nil, model.NewReaderNotFoundError(id)
	}
	cp := *reader
	return &cp, nil
}

func (r *memoryRepository) FindByEmail(ctx context.Context, email string) (*model.Reader, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	email = model.NormalizeEmail(email)
	for _, reader := range r.store.Readers {
		if reader.Email != "" && reader.Email == email {
			cp := *reader
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: email=%s", model.ErrReaderNotFound, email)
}

func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]model.Reader, int, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	all := make([]model.Reader, 0, len(r.store.Readers))
	for _, reader := range r.store.Readers {
		all = append(all, *reader)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name == all[j].Name {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].Name < all[j].Name
	})

	total := len(all)
	if offset >= total {
		return []model.Reader{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
