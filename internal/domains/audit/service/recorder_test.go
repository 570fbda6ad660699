package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/internal/domains/audit/repository"
	"library-lending-backend/internal/infrastructure/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Insert(ctx context.Context, entry *model.Entry) error {
	return errors.New("audit store down")
}

func (failingRepo) List(ctx context.Context, limit, offset int) ([]model.Entry, int, error) {
	return nil, 0, nil
}

func TestRecorder_RecordAndList(t *testing.T) {
	rec := NewRecorder(repository.NewMemoryRepository(memstore.New()), time.Second)

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	staff := uuid.New()
	first, second := uuid.New(), uuid.New()

	rec.now = func() time.Time { return base }
	rec.Record(model.ActionCreate, staff, model.TargetLending, first)
	rec.Wait()

	rec.now = func() time.Time { return base.Add(time.Minute) }
	rec.Record(model.ActionReturn, staff, model.TargetLending, second)
	rec.Wait()

	entries, total, err := rec.List(context.Background(), model.ListAuditRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, model.ActionReturn, entries[0].Action)
	assert.Equal(t, second, entries[0].TargetID)
	assert.Equal(t, model.ActionCreate, entries[1].Action)
	assert.Equal(t, staff, entries[1].PerformedBy)

	page, _, err := rec.List(context.Background(), model.ListAuditRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first, page[0].TargetID)
}

func TestRecorder_FailureIsSwallowed(t *testing.T) {
	rec := NewRecorder(failingRepo{}, time.Second)

	assert.NotPanics(t, func() {
		rec.Record(model.ActionCreate, uuid.New(), model.TargetLending, uuid.New())
		rec.Wait()
	})
}
