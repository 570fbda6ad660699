package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"library-lending-backend/internal/config"
	auditModel "library-lending-backend/internal/domains/audit/model"
	auditRepository "library-lending-backend/internal/domains/audit/repository"
	auditService "library-lending-backend/internal/domains/audit/service"
	bookModel "library-lending-backend/internal/domains/book/model"
	"library-lending-backend/internal/domains/lending/model"
	"library-lending-backend/internal/domains/lending/repository"
	readerModel "library-lending-backend/internal/domains/reader/model"
	readerRepository "library-lending-backend/internal/domains/reader/repository"
	"library-lending-backend/internal/infrastructure/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memstore.Store
	svc     *LendingService
	audit   *auditService.Recorder
	clock   time.Time
	actorID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	audit := auditService.NewRecorder(auditRepository.NewMemoryRepository(store), time.Second)
	svc := NewLendingService(
		repository.NewMemoryRepository(store),
		readerRepository.NewMemoryRepository(store),
		audit,
		config.LendingConfig{
			DefaultLoanDays: 14,
			MaxLoanDays:     365,
			LateFeePerDay:   decimal.RequireFromString("0.25"),
			Currency:        "USD",
		},
	)

	f := &fixture{
		store:   store,
		svc:     svc,
		audit:   audit,
		clock:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		actorID: uuid.New(),
	}
	svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) addBook(total, available int) uuid.UUID {
	id := uuid.New()
	f.store.Books[id] = &bookModel.Book{
		ID:              id,
		Title:           "Book " + id.String()[:8],
		Author:          "Author",
		ISBN:            id.String()[:13],
		TotalCopies:     total,
		AvailableCopies: available,
	}
	return id
}

func (f *fixture) addReader(name string) uuid.UUID {
	id := uuid.New()
	f.store.Readers[id] = &readerModel.Reader{ID: id, Name: name, Email: name + "@example.com"}
	return id
}

func (f *fixture) available(bookID uuid.UUID) int {
	return f.store.Books[bookID].AvailableCopies
}

// assertInvariants kiểm tra copy count và returnedDate trên toàn bộ store
func (f *fixture) assertInvariants(t *testing.T) {
	t.Helper()

	open := make(map[uuid.UUID]int)
	for _, l := range f.store.Lendings {
		assert.Equal(t, l.Status.IsTerminal(), l.ReturnedDate != nil, "lending %s", l.ID)
		assert.True(t, l.DueDate.After(l.BorrowedDate))
		if l.Status.IsOpen() {
			open[l.BookID]++
		}
	}
	for id, b := range f.store.Books {
		assert.GreaterOrEqual(t, b.AvailableCopies, 0)
		assert.LessOrEqual(t, b.AvailableCopies, b.TotalCopies)
		assert.Equal(t, b.TotalCopies-open[id], b.AvailableCopies, "book %s", id)
	}
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("creates borrowed lending with default loan period", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(2, 2)
		reader := f.addReader("ana")

		l, err := f.svc.Checkout(ctx, f.actorID, reader, book, model.DefaultLoanDays)
		require.NoError(t, err)

		assert.Equal(t, model.StatusBorrowed, l.Status)
		assert.Equal(t, f.clock, l.BorrowedDate)
		assert.Equal(t, f.clock.Add(14*24*time.Hour), l.DueDate)
		assert.Equal(t, f.actorID, l.CreatedBy)
		assert.Equal(t, 1, f.available(book))

		f.audit.Wait()
		entries, _, err := f.audit.List(ctx, auditModel.ListAuditRequest{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, auditModel.ActionCreate, entries[0].Action)
		assert.Equal(t, l.ID, entries[0].TargetID)
		f.assertInvariants(t)
	})

	t.Run("custom loan days", func(t *testing.T) {
		f := newFixture(t)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("bo"), f.addBook(1, 1), 3)
		require.NoError(t, err)
		assert.Equal(t, f.clock.Add(72*time.Hour), l.DueDate)
	})

	t.Run("rejects exhausted stock", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 0)

		_, err := f.svc.Checkout(ctx, f.actorID, f.addReader("cy"), book, model.DefaultLoanDays)
		assert.ErrorIs(t, err, model.ErrBookUnavailable)
		assert.Empty(t, f.store.Lendings)
		assert.Equal(t, 0, f.available(book))
	})

	t.Run("unknown book is unavailable", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Checkout(ctx, f.actorID, f.addReader("di"), uuid.New(), model.DefaultLoanDays)
		assert.ErrorIs(t, err, model.ErrBookUnavailable)
		assert.Empty(t, f.store.Lendings)
	})

	t.Run("unknown reader", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)

		_, err := f.svc.Checkout(ctx, f.actorID, uuid.New(), book, model.DefaultLoanDays)
		assert.ErrorIs(t, err, model.ErrReaderNotFound)
		assert.Equal(t, 1, f.available(book))
	})

	t.Run("invalid loan days", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)
		reader := f.addReader("ed")

		for _, days := range []int{0, -1, 366} {
			_, err := f.svc.Checkout(ctx, f.actorID, reader, book, days)
			assert.ErrorIs(t, err, model.ErrInvalidCheckout)
		}
		assert.Equal(t, 1, f.available(book))
	})
}

func TestReturn(t *testing.T) {
	ctx := context.Background()

	t.Run("on time return", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("fa"), book, 7)
		require.NoError(t, err)

		f.clock = l.DueDate
		res, err := f.svc.Return(ctx, f.actorID, l.ID)
		require.NoError(t, err)

		assert.Equal(t, model.StatusReturned, res.Lending.Status)
		require.NotNil(t, res.Lending.ReturnedDate)
		assert.Equal(t, f.clock, *res.Lending.ReturnedDate)
		assert.False(t, res.WasOverdue)
		assert.Equal(t, 0, res.DaysOverdue)
		assert.True(t, res.LateFee.IsZero())
		assert.Equal(t, 1, f.available(book))
		f.assertInvariants(t)
	})

	t.Run("late return computes fee", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("gu"), book, 7)
		require.NoError(t, err)

		f.clock = l.DueDate.Add(2*24*time.Hour + time.Hour)
		res, err := f.svc.Return(ctx, f.actorID, l.ID)
		require.NoError(t, err)

		assert.Equal(t, model.StatusReturnedLate, res.Lending.Status)
		assert.True(t, res.WasOverdue)
		assert.Equal(t, 3, res.DaysOverdue)
		assert.True(t, decimal.RequireFromString("0.75").Equal(res.LateFee))
		assert.Equal(t, "USD", res.Currency)
		f.assertInvariants(t)
	})

	t.Run("stored overdue status can be returned", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("ha"), book, 7)
		require.NoError(t, err)
		f.store.Lendings[l.ID].Status = model.StatusOverdue

		f.clock = l.DueDate.Add(time.Hour)
		res, err := f.svc.Return(ctx, f.actorID, l.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReturnedLate, res.Lending.Status)
		assert.Equal(t, 1, f.available(book))
	})

	t.Run("double return fails once and increments once", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(2, 2)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("io"), book, model.DefaultLoanDays)
		require.NoError(t, err)
		_, err = f.svc.Checkout(ctx, f.actorID, f.addReader("ja"), book, model.DefaultLoanDays)
		require.NoError(t, err)
		require.Equal(t, 0, f.available(book))

		_, err = f.svc.Return(ctx, f.actorID, l.ID)
		require.NoError(t, err)
		_, err = f.svc.Return(ctx, f.actorID, l.ID)
		assert.ErrorIs(t, err, model.ErrAlreadyReturned)
		assert.Equal(t, 1, f.available(book))
		f.assertInvariants(t)
	})

	t.Run("unknown lending", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Return(ctx, f.actorID, uuid.New())
		assert.ErrorIs(t, err, model.ErrLendingNotFound)
	})

	t.Run("missing book does not block return", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("ka"), book, model.DefaultLoanDays)
		require.NoError(t, err)
		delete(f.store.Books, book)

		res, err := f.svc.Return(ctx, f.actorID, l.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReturned, res.Lending.Status)
	})

	t.Run("copy count already at total is an invariant violation", func(t *testing.T) {
		f := newFixture(t)
		book := f.addBook(1, 1)
		l, err := f.svc.Checkout(ctx, f.actorID, f.addReader("lu"), book, model.DefaultLoanDays)
		require.NoError(t, err)
		f.store.Books[book].AvailableCopies = 1

		_, err = f.svc.Return(ctx, f.actorID, l.ID)
		assert.ErrorIs(t, err, model.ErrCopyCountInvariant)
		assert.False(t, errors.Is(err, model.ErrBookUnavailable))

		// không có thay đổi dở dang
		assert.Equal(t, model.StatusBorrowed, f.store.Lendings[l.ID].Status)
		assert.Nil(t, f.store.Lendings[l.ID].ReturnedDate)
		assert.Equal(t, 1, f.available(book))
	})
}

func TestConcurrentCheckoutOfLastCopy(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(3, 1)

	const n = 50
	readers := make([]uuid.UUID, n)
	for i := range readers {
		readers[i] = f.addReader("r" + uuid.NewString()[:6])
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(reader uuid.UUID) {
			defer wg.Done()
			<-start
			_, err := f.svc.Checkout(context.Background(), f.actorID, reader, book, model.DefaultLoanDays)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrBookUnavailable):
				unavailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(readers[i])
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, unavailable)
	assert.Equal(t, 0, f.available(book))
	assert.Len(t, f.store.Lendings, 1)
}

func TestConcurrentReturnOfSameLending(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(1, 1)
	l, err := f.svc.Checkout(context.Background(), f.actorID, f.addReader("mo"), book, model.DefaultLoanDays)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Return(context.Background(), f.actorID, l.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, model.ErrAlreadyReturned)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, f.available(book))
}

func TestLendingLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	book := f.addBook(2, 2)
	readerA, readerB, readerC := f.addReader("a"), f.addReader("b"), f.addReader("c")

	lendingA, err := f.svc.Checkout(ctx, f.actorID, readerA, book, model.DefaultLoanDays)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBorrowed, lendingA.Status)
	assert.Equal(t, 1, f.available(book))

	_, err = f.svc.Checkout(ctx, f.actorID, readerB, book, model.DefaultLoanDays)
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(book))

	_, err = f.svc.Checkout(ctx, f.actorID, readerC, book, model.DefaultLoanDays)
	assert.ErrorIs(t, err, model.ErrBookUnavailable)

	f.clock = lendingA.DueDate.Add(24 * time.Hour)
	res, err := f.svc.Return(ctx, f.actorID, lendingA.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturnedLate, res.Lending.Status)
	assert.True(t, res.WasOverdue)
	assert.Equal(t, 1, f.available(book))
	f.assertInvariants(t)

	f.audit.Wait()
	entries, total, err := f.audit.List(ctx, auditModel.ListAuditRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, auditModel.ActionReturn, entries[0].Action)
}

func TestListLendings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	book1, book2 := f.addBook(2, 2), f.addBook(1, 1)
	reader := f.addReader("ni")

	first, err := f.svc.Checkout(ctx, f.actorID, reader, book1, 1)
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Hour)
	second, err := f.svc.Checkout(ctx, f.actorID, f.addReader("ol"), book2, model.DefaultLoanDays)
	require.NoError(t, err)

	all, err := f.svc.ListLendings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	require.NotNil(t, all[0].Book)
	require.NotNil(t, all[0].Reader)
	assert.Equal(t, book2, all[0].Book.ID)

	byReader, err := f.svc.ListByReader(ctx, reader)
	require.NoError(t, err)
	require.Len(t, byReader, 1)
	assert.Equal(t, first.ID, byReader[0].ID)

	byBook, err := f.svc.ListByBook(ctx, book2)
	require.NoError(t, err)
	require.Len(t, byBook, 1)
	assert.Equal(t, second.ID, byBook[0].ID)

	f.clock = first.DueDate.Add(time.Minute)
	got, err := f.svc.GetLending(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.Overdue)
	assert.Equal(t, model.StatusBorrowed, got.Status)
}
