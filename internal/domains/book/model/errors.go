package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrISBNAlreadyExists  = errors.New("ISBN already exists")
	ErrNoCopiesAvailable  = errors.New("no copies available")
	ErrCopiesAtTotal      = errors.New("available copies already equal total copies")
	ErrInvalidBookRequest = errors.New("invalid book request")
)

func NewBookNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrBookNotFound, id)
}

func NewValidationError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidBookRequest, err)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidBookRequest)
}
