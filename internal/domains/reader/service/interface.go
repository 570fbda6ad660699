package service

import (
	"context"

	"library-lending-backend/internal/domains/reader/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	CreateReader(ctx context.Context, req model.CreateReaderRequest) (*model.Reader, error)
	GetReader(ctx context.Context, id uuid.UUID) (*model.Reader, error)
	ListReaders(ctx context.Context, req model.ListReadersRequest) ([]model.Reader, int, error)
}
