package service

import (
	"context"
	"time"

	"library-lending-backend/internal/domains/book/model"
	"library-lending-backend/internal/domains/book/repository"
	"library-lending-backend/internal/shared/utils"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
)

type BookService struct {
	repo repository.RepositoryInterface
}

func NewBookService(repo repository.RepositoryInterface) ServiceInterface {
	return &BookService{repo: repo}
}

func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	book := req.ToBook(time.Now().UTC())
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	logger.Info("Book created", map[string]interface{}{
		"book_id":      book.ID,
		"isbn":         book.ISBN,
		"total_copies": book.TotalCopies,
	})
	return book, nil
}

func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookService) ListBooks(ctx context.Context, req model.ListBooksRequest) ([]model.Book, int, error) {
	limit, offset := utils.NormalizePage(req.Limit, req.Offset)
	return s.repo.List(ctx, limit, offset)
}
