package service

import (
	"bytes"
	"context"
	"time"

	lendingModel "library-lending-backend/internal/domains/lending/model"
	notificationModel "library-lending-backend/internal/domains/notification/model"
	"library-lending-backend/internal/domains/overdue/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	FindOverdue(ctx context.Context, asOf time.Time) ([]lendingModel.LendingDetail, error)
	ListGrouped(ctx context.Context) ([]model.ReaderGroup, error)
	ListByReader(ctx context.Context, readerID uuid.UUID) ([]lendingModel.LendingDetail, error)
	NotifyOverdueReaders(ctx context.Context, triggeredBy string) (*model.NotifyReport, error)
	ExportGroupedExcel(ctx context.Context) (*bytes.Buffer, error)
}

// LendingFinder - phần read của Lending Ledger mà scanner cần
type LendingFinder interface {
	FindOverdue(ctx context.Context, asOf time.Time, readerID *uuid.UUID) ([]lendingModel.LendingDetail, error)
}

// Dispatcher - Notification Dispatcher, gọi đúng một lần cho mỗi reader
type Dispatcher interface {
	Send(ctx context.Context, readerID uuid.UUID) (notificationModel.Outcome, error)
}
