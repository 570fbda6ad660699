package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrReaderNotFound       = errors.New("reader not found")
	ErrEmailAlreadyExists   = errors.New("email already registered to another reader")
	ErrInvalidReaderRequest = errors.New("invalid reader request")
)

func NewReaderNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrReaderNotFound, id)
}

func NewValidationError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidReaderRequest, err)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrReaderNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidReaderRequest)
}
