package service

import (
	"context"

	"library-lending-backend/internal/domains/book/model"

	"github.com/google/uuid"
)

// ServiceInterface - Catalog operations exposed to the dashboard
type ServiceInterface interface {
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error)
}
