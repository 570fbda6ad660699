package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/domains/reader/repository"
	"library-lending-backend/internal/shared/utils"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
)

type ReaderService struct {
	repo repository.RepositoryInterface
}

func NewReaderService(repo repository.RepositoryInterface) ServiceInterface {
	return &ReaderService{repo: repo}
}

func (s *ReaderService) CreateReader(ctx context.Context, req model.CreateReaderRequest) (*model.Reader, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	reader := req.ToReader(time.Now().UTC())

	// Check trùng email trước khi insert (unique index vẫn là chốt chặn cuối)
	if reader.HasEmail() {
		_, err := s.repo.FindByEmail(ctx, reader.Email)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: %s", model.ErrEmailAlreadyExists, reader.Email)
		case !errors.Is(err, model.ErrReaderNotFound):
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, reader); err != nil {
		return nil, err
	}

	logger.Info("Reader created", map[string]interface{}{
		"reader_id": reader.ID,
		"has_email": reader.HasEmail(),
	})
	return reader, nil
}

func (s *ReaderService) GetReader(ctx context.Context, id uuid.UUID) (*model.Reader, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ReaderService) ListReaders(ctx context.Context, req model.ListReadersRequest) ([]model.Reader, int, error) {
	limit, offset := utils.NormalizePage(req.Limit, req.Offset)
	return s.repo.List(ctx, limit, offset)
}
