package model

import (
	"time"

	bookModel "library-lending-backend/internal/domains/book/model"
	readerModel "library-lending-backend/internal/domains/reader/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========================================
// STATUS
// ========================================

type Status string

const (
	StatusBorrowed     Status = "borrowed"
	StatusOverdue      Status = "overdue"
	StatusReturned     Status = "returned"
	StatusReturnedLate Status = "returnedLate"
)

// IsOpen: lending còn giữ một bản của book
func (s Status) IsOpen() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusReturnedLate
}

func (s Status) Valid() bool {
	return s.IsOpen() || s.IsTerminal()
}

const DefaultLoanDays = 14

// ========================================
// LENDING
// ========================================

// Lending là một lần mượn một bản sách. Chỉ được tạo bởi checkout,
// chỉ được cập nhật một lần bởi return, không bao giờ bị xóa.
type Lending struct {
	ID           uuid.UUID  `json:"id"`
	ReaderID     uuid.UUID  `json:"readerId"`
	BookID       uuid.UUID  `json:"bookId"`
	BorrowedDate time.Time  `json:"borrowedDate"`
	DueDate      time.Time  `json:"dueDate"`
	ReturnedDate *time.Time `json:"returnedDate,omitempty"`
	Status       Status     `json:"status"`
	CreatedBy    uuid.UUID  `json:"createdBy"`
	ReturnedBy   *uuid.UUID `json:"returnedBy,omitempty"`
}

func NewLending(readerID, bookID, actorID uuid.UUID, borrowedAt time.Time, loanDays int) *Lending {
	return &Lending{
		ID:           uuid.New(),
		ReaderID:     readerID,
		BookID:       bookID,
		BorrowedDate: borrowedAt,
		DueDate:      borrowedAt.Add(time.Duration(loanDays) * 24 * time.Hour),
		Status:       StatusBorrowed,
		CreatedBy:    actorID,
	}
}

// IsOverdueAt: overdue được tính khi đọc. Status "overdue" lưu sẵn (dữ liệu cũ)
// được coi tương đương borrowed quá hạn.
func (l *Lending) IsOverdueAt(t time.Time) bool {
	switch l.Status {
	case StatusOverdue:
		return true
	case StatusBorrowed:
		return t.After(l.DueDate)
	default:
		return false
	}
}

// CloseStatus: trả đúng hạn (kể cả đúng thời điểm dueDate) là returned
func (l *Lending) CloseStatus(at time.Time) Status {
	if at.After(l.DueDate) {
		return StatusReturnedLate
	}
	return StatusReturned
}

// ========================================
// READ MODELS
// ========================================

// LendingDetail là lending kèm summary của book/reader. Book/Reader nil
// khi entity đã bị xóa khỏi catalog/directory.
type LendingDetail struct {
	Lending
	Book    *bookModel.Summary   `json:"book,omitempty"`
	Reader  *readerModel.Summary `json:"reader,omitempty"`
	Overdue bool                 `json:"overdue"`
}

type ListFilter struct {
	ReaderID *uuid.UUID
	BookID   *uuid.UUID
}

// ReturnResult là kết quả của return
type ReturnResult struct {
	Lending     *Lending        `json:"lending"`
	WasOverdue  bool            `json:"wasOverdue"`
	DaysOverdue int             `json:"daysOverdue"`
	LateFee     decimal.Decimal `json:"lateFee"`
	Currency    string          `json:"currency"`
}
