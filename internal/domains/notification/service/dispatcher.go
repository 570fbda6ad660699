package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	lendingModel "library-lending-backend/internal/domains/lending/model"
	"library-lending-backend/internal/domains/notification/model"
	readerModel "library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/infrastructure/email"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
)

type ReaderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*readerModel.Reader, error)
}

type OverdueFinder interface {
	FindOverdue(ctx context.Context, asOf time.Time, readerID *uuid.UUID) ([]lendingModel.LendingDetail, error)
}

// Dispatcher gửi email nhắc trả sách cho một reader.
// Danh sách lending quá hạn được query lại tại thời điểm gửi.
type Dispatcher struct {
	readers  ReaderFinder
	lendings OverdueFinder
	mailer   email.Mailer
	library  string
	now      func() time.Time
}

func NewDispatcher(readers ReaderFinder, lendings OverdueFinder, mailer email.Mailer, libraryName string) *Dispatcher {
	return &Dispatcher{
		readers:  readers,
		lendings: lendings,
		mailer:   mailer,
		library:  libraryName,
		now:      time.Now,
	}
}

func (d *Dispatcher) Send(ctx context.Context, readerID uuid.UUID) (model.Outcome, error) {
	reader, err := d.readers.FindByID(ctx, readerID)
	if err != nil {
		if errors.Is(err, readerModel.ErrReaderNotFound) {
			d.logSkip(readerID, model.SkipReaderNotFound)
			return model.OutcomeSkipped, nil
		}
		return model.OutcomeFailed, fmt.Errorf("load reader: %w", err)
	}
	if !reader.HasEmail() {
		d.logSkip(readerID, model.SkipNoEmail)
		return model.OutcomeSkipped, nil
	}

	lendings, err := d.lendings.FindOverdue(ctx, d.now(), &readerID)
	if err != nil {
		return model.OutcomeFailed, fmt.Errorf("load overdue lendings: %w", err)
	}
	if len(lendings) == 0 {
		d.logSkip(readerID, model.SkipNoOverdue)
		return model.OutcomeSkipped, nil
	}

	data := model.ReminderData{
		ReaderID:   reader.ID,
		ReaderName: reader.Name,
		Library:    d.library,
		Items:      make([]model.OverdueItem, 0, len(lendings)),
	}
	for _, l := range lendings {
		item := model.OverdueItem{Title: "Unknown title", DueDate: l.DueDate}
		if l.Book != nil {
			item.Title = l.Book.Title
			item.Author = l.Book.Author
		}
		data.Items = append(data.Items, item)
	}

	body, err := renderOverdueReminder(data)
	if err != nil {
		return model.OutcomeFailed, err
	}

	if err := d.mailer.Send(ctx, email.Message{
		To:       reader.Email,
		Subject:  model.OverdueReminderSubject,
		HTMLBody: body,
	}); err != nil {
		return model.OutcomeFailed, err
	}

	logger.Info("Overdue reminder sent", map[string]interface{}{
		"reader_id": readerID,
		"books":     len(data.Items),
	})
	return model.OutcomeSent, nil
}

func (d *Dispatcher) logSkip(readerID uuid.UUID, reason string) {
	logger.Debug("Overdue reminder skipped", map[string]interface{}{
		"reader_id": readerID,
		"reason":    reason,
	})
}
