package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	bookModel "library-lending-backend/internal/domains/book/model"
	lendingModel "library-lending-backend/internal/domains/lending/model"
	lendingRepository "library-lending-backend/internal/domains/lending/repository"
	"library-lending-backend/internal/domains/notification/model"
	readerModel "library-lending-backend/internal/domains/reader/model"
	readerRepository "library-lending-backend/internal/domains/reader/repository"
	"library-lending-backend/internal/infrastructure/email"
	"library-lending-backend/internal/infrastructure/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	err  error
	sent []email.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg email.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var now = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*memstore.Store, *recordingMailer, *Dispatcher) {
	t.Helper()
	store := memstore.New()
	mailer := &recordingMailer{}
	d := NewDispatcher(
		readerRepository.NewMemoryRepository(store),
		lendingRepository.NewMemoryRepository(store),
		mailer,
		"City Library",
	)
	d.now = func() time.Time { return now }
	return store, mailer, d
}

func addReader(store *memstore.Store, name, mail string) uuid.UUID {
	id := uuid.New()
	store.Readers[id] = &readerModel.Reader{ID: id, Name: name, Email: mail}
	return id
}

func addLending(store *memstore.Store, readerID uuid.UUID, title string, status lendingModel.Status, due time.Time) {
	bookID := uuid.New()
	store.Books[bookID] = &bookModel.Book{ID: bookID, Title: title, Author: "Someone", TotalCopies: 1}
	l := lendingModel.NewLending(readerID, bookID, uuid.New(), due.Add(-14*24*time.Hour), 14)
	l.Status = status
	store.Lendings[l.ID] = l
}

func TestDispatcher_SendsOneMessageListingAllTitles(t *testing.T) {
	store, mailer, d := setup(t)
	r := addReader(store, "Ana <Admin>", "ana@example.com")
	addLending(store, r, "Dune", lendingModel.StatusBorrowed, now.Add(-48*time.Hour))
	addLending(store, r, "Emma", lendingModel.StatusOverdue, now.Add(-24*time.Hour))
	addLending(store, r, "Not Yet Due", lendingModel.StatusBorrowed, now.Add(24*time.Hour))

	outcome, err := d.Send(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSent, outcome)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, model.OverdueReminderSubject, msg.Subject)
	assert.Contains(t, msg.HTMLBody, "Dune")
	assert.Contains(t, msg.HTMLBody, "Emma")
	assert.Contains(t, msg.HTMLBody, now.Add(-48*time.Hour).Format("2006-01-02"))
	assert.NotContains(t, msg.HTMLBody, "Not Yet Due")
	assert.Contains(t, msg.HTMLBody, "Ana &lt;Admin&gt;")
	assert.Equal(t, 1, strings.Count(msg.HTMLBody, "books are"))
}

func TestDispatcher_Skips(t *testing.T) {
	t.Run("reader missing", func(t *testing.T) {
		_, mailer, d := setup(t)
		outcome, err := d.Send(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeSkipped, outcome)
		assert.Empty(t, mailer.sent)
	})

	t.Run("reader without email", func(t *testing.T) {
		store, mailer, d := setup(t)
		r := addReader(store, "Bo", "")
		addLending(store, r, "Dune", lendingModel.StatusOverdue, now.Add(-time.Hour))

		outcome, err := d.Send(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeSkipped, outcome)
		assert.Empty(t, mailer.sent)
	})

	t.Run("nothing overdue anymore", func(t *testing.T) {
		store, mailer, d := setup(t)
		r := addReader(store, "Cy", "cy@example.com")
		addLending(store, r, "Returned", lendingModel.StatusReturnedLate, now.Add(-time.Hour))

		outcome, err := d.Send(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeSkipped, outcome)
		assert.Empty(t, mailer.sent)
	})
}

func TestDispatcher_MailerFailure(t *testing.T) {
	store, mailer, d := setup(t)
	mailer.err = errors.New("smtp 421")
	r := addReader(store, "Di", "di@example.com")
	addLending(store, r, "Dune", lendingModel.StatusOverdue, now.Add(-time.Hour))

	outcome, err := d.Send(context.Background(), r)
	assert.Error(t, err)
	assert.Equal(t, model.OutcomeFailed, outcome)
}
