package repository

import (
	"context"

	"library-lending-backend/internal/domains/reader/model"

	"github.com/google/uuid"
)

// RepositoryInterface - Reader Directory
type RepositoryInterface interface {
	Create(ctx context.Context, reader *model.Reader) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reader, error)
	FindByEmail(ctx context.Context, email string) (*model.Reader, error)
	List(ctx context.Context, limit, offset int) ([]model.Reader, int, error)
}
