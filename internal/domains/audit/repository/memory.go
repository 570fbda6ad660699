package repository

import (
	"context"

	"library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/internal/infrastructure/memstore"
)

type memoryRepository struct {
	store *memstore.Store
}

func NewMemoryRepository(store *memstore.Store) RepositoryInterface {
	return &memoryRepository{store: store}
}

func (r *memoryRepository) Insert(ctx context.Context, entry *model.Entry) error {
	r.store.Mu.Lock()
	defer r.store.Mu.Unlock()
	r.store.Audit = append(r.store.Audit, *entry)
	return nil
}

// List duyệt ngược slice: entry ghi sau nằm cuối
func (r *memoryRepository) List(ctx context.Context, limit, offset int) ([]model.Entry, int, error) {
	r.store.Mu.RLock()
	defer r.store.Mu.RUnlock()

	total := len(r.store.Audit)
	entries := make([]model.Entry, 0, limit)
	for i := total - 1 - offset; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, r.store.Audit[i])
	}
	return entries, total, nil
}
