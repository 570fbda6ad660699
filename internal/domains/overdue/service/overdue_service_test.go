package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"library-lending-backend/internal/config"
	lendingModel "library-lending-backend/internal/domains/lending/model"
	lendingRepository "library-lending-backend/internal/domains/lending/repository"
	notificationModel "library-lending-backend/internal/domains/notification/model"
	"library-lending-backend/internal/domains/overdue/model"
	readerModel "library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/infrastructure/memstore"
	"library-lending-backend/internal/shared"
	"library-lending-backend/pkg/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Send(ctx context.Context, readerID uuid.UUID) (notificationModel.Outcome, error) {
	args := m.Called(ctx, readerID)
	return args.Get(0).(notificationModel.Outcome), args.Error(1)
}

var now = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

type overdueFixture struct {
	store      *memstore.Store
	cache      *cache.MemoryCache
	dispatcher *mockDispatcher
	svc        *OverdueService
}

func newOverdueFixture(t *testing.T) *overdueFixture {
	t.Helper()
	store := memstore.New()
	c := cache.NewMemoryCache()
	d := new(mockDispatcher)

	svc := NewOverdueService(lendingRepository.NewMemoryRepository(store), d, c, config.NotificationConfig{
		Parallelism: 4,
		RunLockTTL:  time.Minute,
	})
	svc.now = func() time.Time { return now }
	return &overdueFixture{store: store, cache: c, dispatcher: d, svc: svc}
}

func (f *overdueFixture) reader(name string) uuid.UUID {
	id := uuid.New()
	f.store.Readers[id] = &readerModel.Reader{ID: id, Name: name, Email: name + "@example.com"}
	return id
}

func (f *overdueFixture) lending(readerID uuid.UUID, status lendingModel.Status, due time.Time) uuid.UUID {
	l := lendingModel.NewLending(readerID, uuid.New(), uuid.New(), due.Add(-14*24*time.Hour), 14)
	l.Status = status
	if status.IsTerminal() {
		at := due.Add(time.Hour)
		l.ReturnedDate = &at
	}
	f.store.Lendings[l.ID] = l
	return l.ID
}

func ids(lendings []lendingModel.LendingDetail) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(lendings))
	for _, l := range lendings {
		out = append(out, l.ID)
	}
	return out
}

func TestFindOverdue_UnionWithoutDuplicates(t *testing.T) {
	f := newOverdueFixture(t)
	r := f.reader("ana")

	pastDue := f.lending(r, lendingModel.StatusBorrowed, now.Add(-48*time.Hour))
	flagged := f.lending(r, lendingModel.StatusOverdue, now.Add(-time.Hour))
	flaggedNotYetDue := f.lending(r, lendingModel.StatusOverdue, now.Add(72*time.Hour))
	f.lending(r, lendingModel.StatusBorrowed, now.Add(24*time.Hour))
	f.lending(r, lendingModel.StatusBorrowed, now)
	f.lending(r, lendingModel.StatusReturnedLate, now.Add(-72*time.Hour))
	f.lending(r, lendingModel.StatusReturned, now.Add(-72*time.Hour))

	got, err := f.svc.FindOverdue(context.Background(), now)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{pastDue, flagged, flaggedNotYetDue}, ids(got))
	for _, l := range got {
		assert.True(t, l.Overdue)
	}
}

func TestGroupByReader(t *testing.T) {
	f := newOverdueFixture(t)
	a, b := f.reader("a"), f.reader("b")
	f.lending(a, lendingModel.StatusBorrowed, now.Add(-72*time.Hour))
	f.lending(b, lendingModel.StatusBorrowed, now.Add(-48*time.Hour))
	f.lending(a, lendingModel.StatusOverdue, now.Add(-24*time.Hour))
	f.lending(a, lendingModel.StatusBorrowed, now.Add(-time.Hour))

	groups, err := f.svc.ListGrouped(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, a, groups[0].Reader.ID)
	assert.Equal(t, "a", groups[0].Reader.Name)
	assert.Len(t, groups[0].Lendings, 3)
	assert.Equal(t, b, groups[1].Reader.ID)
	assert.Len(t, groups[1].Lendings, 1)

	byReader, err := f.svc.ListByReader(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, byReader, 3)
}

func TestGroupByReader_MissingReader(t *testing.T) {
	readerID := uuid.New()
	groups := GroupByReader([]lendingModel.LendingDetail{
		{Lending: lendingModel.Lending{ID: uuid.New(), ReaderID: readerID}},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, readerID, groups[0].Reader.ID)
	assert.Empty(t, groups[0].Reader.Name)
}

func TestNotifyOverdueReaders_OneDispatchPerReader(t *testing.T) {
	f := newOverdueFixture(t)
	r := f.reader("many")
	for i := 0; i < 3; i++ {
		f.lending(r, lendingModel.StatusBorrowed, now.Add(-time.Duration(i+1)*time.Hour))
	}

	f.dispatcher.On("Send", mock.Anything, r).Return(notificationModel.OutcomeSent, nil).Once()

	report, err := f.svc.NotifyOverdueReaders(context.Background(), "staff")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, "1 reader(s) notified", report.Message())
	f.dispatcher.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotifyOverdueReaders_FailureIsolation(t *testing.T) {
	f := newOverdueFixture(t)
	failing, panicking, ok, skipped := f.reader("f"), f.reader("p"), f.reader("o"), f.reader("s")
	for _, r := range []uuid.UUID{failing, panicking, ok, skipped} {
		f.lending(r, lendingModel.StatusOverdue, now.Add(-time.Hour))
	}

	f.dispatcher.On("Send", mock.Anything, failing).Return(notificationModel.OutcomeFailed, errors.New("smtp down")).Once()
	f.dispatcher.On("Send", mock.Anything, panicking).Run(func(mock.Arguments) { panic("template exploded") }).Once()
	f.dispatcher.On("Send", mock.Anything, ok).Return(notificationModel.OutcomeSent, nil).Once()
	f.dispatcher.On("Send", mock.Anything, skipped).Return(notificationModel.OutcomeSkipped, nil).Once()

	report, err := f.svc.NotifyOverdueReaders(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 4, report.Attempted)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, report.Failures, 2)
	assert.Equal(t, "4 reader(s) notified", report.Message())
	f.dispatcher.AssertExpectations(t)
}

func TestNotifyOverdueReaders_NoOverdue(t *testing.T) {
	f := newOverdueFixture(t)
	f.lending(f.reader("x"), lendingModel.StatusBorrowed, now.Add(time.Hour))

	report, err := f.svc.NotifyOverdueReaders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Attempted)
	assert.Equal(t, "0 reader(s) notified", report.Message())
	f.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifyOverdueReaders_RunLock(t *testing.T) {
	f := newOverdueFixture(t)
	ctx := context.Background()

	held, err := f.cache.SetNX(ctx, shared.CacheKeyNotifyRunLock, "other-run", time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = f.svc.NotifyOverdueReaders(ctx, "")
	assert.ErrorIs(t, err, model.ErrNotifyInProgress)

	require.NoError(t, f.cache.ReleaseLock(ctx, shared.CacheKeyNotifyRunLock, "other-run"))

	_, err = f.svc.NotifyOverdueReaders(ctx, "")
	require.NoError(t, err)

	// lock được trả sau khi chạy xong
	exists, err := f.cache.Exists(ctx, shared.CacheKeyNotifyRunLock)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNotifyOverdueReaders_BoundedParallelism(t *testing.T) {
	f := newOverdueFixture(t)
	f.svc.cfg.Parallelism = 2

	var inFlight, peak int32
	for i := 0; i < 8; i++ {
		r := f.reader("r" + uuid.NewString()[:4])
		f.lending(r, lendingModel.StatusOverdue, now.Add(-time.Hour))
		f.dispatcher.On("Send", mock.Anything, r).Run(func(mock.Arguments) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}).Return(notificationModel.OutcomeSent, nil).Once()
	}

	report, err := f.svc.NotifyOverdueReaders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 8, report.Sent)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestExportGroupedExcel(t *testing.T) {
	f := newOverdueFixture(t)
	r := f.reader("ana")
	lendingID := f.lending(r, lendingModel.StatusBorrowed, now.Add(-time.Hour))

	buf, err := f.svc.ExportGroupedExcel(context.Background())
	require.NoError(t, err)

	xlsx, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer xlsx.Close()

	header, err := xlsx.GetCellValue(exportSheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Reader ID", header)

	name, err := xlsx.GetCellValue(exportSheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "ana", name)

	got, err := xlsx.GetCellValue(exportSheetName, "D2")
	require.NoError(t, err)
	assert.Equal(t, lendingID.String(), got)
}
