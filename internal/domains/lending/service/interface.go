package service

import (
	"context"

	auditModel "library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/internal/domains/lending/model"
	readerModel "library-lending-backend/internal/domains/reader/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	Checkout(ctx context.Context, actorID, readerID, bookID uuid.UUID, loanDays int) (*model.Lending, error)
	Return(ctx context.Context, actorID, lendingID uuid.UUID) (*model.ReturnResult, error)

	GetLending(ctx context.Context, id uuid.UUID) (*model.LendingDetail, error)
	ListLendings(ctx context.Context) ([]model.LendingDetail, error)
	ListByReader(ctx context.Context, readerID uuid.UUID) ([]model.LendingDetail, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.LendingDetail, error)
}

// ReaderFinder - Reader Directory
type ReaderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*readerModel.Reader, error)
}

// AuditRecorder - Audit Sink, best-effort
type AuditRecorder interface {
	Record(action auditModel.Action, performedBy uuid.UUID, targetModel string, targetID uuid.UUID)
}
