package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"library-lending-backend/internal/domains/lending/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestLogUnexpected(t *testing.T) {
	fields := map[string]interface{}{"lending_id": "l-1"}

	t.Run("precondition errors are not logged", func(t *testing.T) {
		buf := captureLog(t)

		for _, err := range []error{
			model.ErrBookUnavailable,
			model.ErrAlreadyReturned,
			model.ErrLendingNotFound,
			fmt.Errorf("%w: id=r-1", model.ErrReaderNotFound),
			model.NewValidationError(errors.New("days must be a positive integer")),
		} {
			logUnexpected("Return failed", err, fields)
		}
		assert.Empty(t, buf.String())
	})

	t.Run("system failures are logged with fields", func(t *testing.T) {
		buf := captureLog(t)

		logUnexpected("Return failed", errors.New("connection reset"), fields)

		out := buf.String()
		assert.Contains(t, out, `"level":"error"`)
		assert.Contains(t, out, "Return failed")
		assert.Contains(t, out, "connection reset")
		assert.Contains(t, out, `"lending_id":"l-1"`)
	})

	t.Run("already returned through service stays silent", func(t *testing.T) {
		f := newFixture(t)
		readerID := f.addReader("grace")
		bookID := f.addBook(1, 1)
		l, err := f.svc.Checkout(context.Background(), f.actorID, readerID, bookID, model.DefaultLoanDays)
		assert.NoError(t, err)
		_, err = f.svc.Return(context.Background(), f.actorID, l.ID)
		assert.NoError(t, err)

		buf := captureLog(t)
		_, err = f.svc.Return(context.Background(), f.actorID, l.ID)

		assert.ErrorIs(t, err, model.ErrAlreadyReturned)
		assert.NotContains(t, buf.String(), "Return failed")
	})
}
