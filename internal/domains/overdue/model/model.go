package model

import (
	"errors"
	"fmt"
	"time"

	lendingModel "library-lending-backend/internal/domains/lending/model"
	readerModel "library-lending-backend/internal/domains/reader/model"

	"github.com/google/uuid"
)

var (
	ErrNotifyInProgress = errors.New("overdue notification run already in progress")
	ErrAsyncUnavailable = errors.New("background queue is not configured")
)

// ReaderGroup: một reader cùng mọi lending quá hạn của reader đó
type ReaderGroup struct {
	Reader   readerModel.Summary          `json:"reader"`
	Lendings []lendingModel.LendingDetail `json:"lendings"`
}

type DispatchFailure struct {
	ReaderID uuid.UUID `json:"readerId"`
	Error    string    `json:"error"`
}

// NotifyReport tổng hợp một lần chạy notify.
// Attempted = số reader đã được gọi dispatch, kể cả skipped và failed.
type NotifyReport struct {
	Attempted   int               `json:"attempted"`
	Sent        int               `json:"sent"`
	Skipped     int               `json:"skipped"`
	Failed      int               `json:"failed"`
	Failures    []DispatchFailure `json:"failures,omitempty"`
	TriggeredBy string            `json:"triggeredBy,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	FinishedAt  time.Time         `json:"finishedAt"`
}

func (r *NotifyReport) Message() string {
	return fmt.Sprintf("%d reader(s) notified", r.Attempted)
}
