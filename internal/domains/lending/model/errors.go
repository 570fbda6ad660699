package model

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

var (
	ErrBookUnavailable    = errors.New("book unavailable")
	ErrReaderNotFound     = errors.New("reader not found")
	ErrLendingNotFound    = errors.New("lending not found")
	ErrAlreadyReturned    = errors.New("lending already returned")
	ErrInvalidCheckout    = errors.New("invalid checkout request")
	ErrCopyCountInvariant = errors.New("copy count invariant violated")
)

func NewBookUnavailableError(bookID uuid.UUID) error {
	return fmt.Errorf("%w: book_id=%s", ErrBookUnavailable, bookID)
}

func NewLendingNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrLendingNotFound, id)
}

func NewAlreadyReturnedError(id uuid.UUID, status Status) error {
	return fmt.Errorf("%w: id=%s status=%s", ErrAlreadyReturned, id, status)
}

func NewValidationError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidCheckout, err)
}

// IsPreconditionError: lỗi caller tự xử lý được, không log như system failure
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrBookUnavailable) ||
		errors.Is(err, ErrReaderNotFound) ||
		errors.Is(err, ErrLendingNotFound) ||
		errors.Is(err, ErrAlreadyReturned) ||
		errors.Is(err, ErrInvalidCheckout)
}

type ErrorSpec struct {
	Status  int
	Code    string
	Message string
}

var lendingErrorMap = []struct {
	err     error
	mapping ErrorSpec
}{
	{ErrInvalidCheckout, ErrorSpec{http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"}},
	{ErrBookUnavailable, ErrorSpec{http.StatusBadRequest, "BOOK_UNAVAILABLE", "Book is not available for checkout"}},
	{ErrReaderNotFound, ErrorSpec{http.StatusNotFound, "READER_NOT_FOUND", "Reader not found"}},
	{ErrLendingNotFound, ErrorSpec{http.StatusNotFound, "LENDING_NOT_FOUND", "Lending not found"}},
	{ErrAlreadyReturned, ErrorSpec{http.StatusNotFound, "ALREADY_RETURNED", "Book already returned"}},
	{ErrCopyCountInvariant, ErrorSpec{http.StatusInternalServerError, "COPY_COUNT_INVARIANT", "Internal consistency error"}},
}

// LookupError trả về status/code HTTP cho lỗi đã biết
func LookupError(err error) (ErrorSpec, bool) {
	for _, e := range lendingErrorMap {
		if errors.Is(err, e.err) {
			return e.mapping, true
		}
	}
	return ErrorSpec{}, false
}
