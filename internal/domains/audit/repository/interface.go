package repository

import (
	"context"

	"library-lending-backend/internal/domains/audit/model"
)

type RepositoryInterface interface {
	Insert(ctx context.Context, entry *model.Entry) error
	List(ctx context.Context, limit, offset int) ([]model.Entry, int, error)
}
