package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookModel "library-lending-backend/internal/domains/book/model"
	bookRepository "library-lending-backend/internal/domains/book/repository"
	"library-lending-backend/internal/domains/lending/model"
	readerModel "library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/internal/shared/utils"
	"library-lending-backend/pkg/database"
	"library-lending-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const lendingColumns = `id, reader_id, book_id, borrowed_date, due_date, returned_date, status, created_by, returned_by`

const detailSelect = `
	SELECT l.id, l.reader_id, l.book_id, l.borrowed_date, l.due_date, l.returned_date,
	       l.status, l.created_by, l.returned_by,
	       b.id, b.title, b.author, b.isbn,
	       r.id, r.name, r.email
	FROM lendings l
	LEFT JOIN books b ON b.id = l.book_id
	LEFT JOIN readers r ON r.id = l.reader_id
`

type postgresRepository struct {
	pool database.Pool
}

func NewPostgresRepository(pool database.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func scanLending(row pgx.Row) (*model.Lending, error) {
	var l model.Lending
	var status string
	err := row.Scan(&l.ID, &l.ReaderID, &l.BookID, &l.BorrowedDate, &l.DueDate,
		&l.ReturnedDate, &status, &l.CreatedBy, &l.ReturnedBy)
	if err != nil {
		return nil, err
	}
	l.Status = model.Status(status)
	return &l, nil
}

func scanDetail(row pgx.Row) (*model.LendingDetail, error) {
	var (
		d                          model.LendingDetail
		status                     string
		bookID, readerID           *uuid.UUID
		title, author, isbn, rName *string
		rEmail                     *string
	)
	err := row.Scan(&d.ID, &d.ReaderID, &d.BookID, &d.BorrowedDate, &d.DueDate,
		&d.ReturnedDate, &status, &d.CreatedBy, &d.ReturnedBy,
		&bookID, &title, &author, &isbn,
		&readerID, &rName, &rEmail,
	)
	if err != nil {
		return nil, err
	}
	d.Status = model.Status(status)

	if bookID != nil {
		d.Book = &bookModel.Summary{ID: *bookID, Title: deref(title), Author: deref(author), ISBN: deref(isbn)}
	}
	if readerID != nil {
		d.Reader = &readerModel.Summary{ID: *readerID, Name: deref(rName), Email: deref(rEmail)}
	}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ========================================
// WRITE
// ========================================

func (r *postgresRepository) Checkout(ctx context.Context, lending *model.Lending) (*model.Lending, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Lending, error) {
		books := bookRepository.NewPostgresRepository(tx)
		if _, err := books.DecrementAvailable(ctx, lending.BookID); err != nil {
			if errors.Is(err, bookModel.ErrNoCopiesAvailable) {
				return nil, model.NewBookUnavailableError(lending.BookID)
			}
			return nil, err
		}

		query := `
			INSERT INTO lendings (` + lendingColumns + `)
			VALUES ($1, $2, $3, $4, $5, NULL, $6, $7, NULL)
			RETURNING ` + lendingColumns

		created, err := scanLending(tx.QueryRow(ctx, query,
			lending.ID, lending.ReaderID, lending.BookID, lending.BorrowedDate, lending.DueDate,
			string(lending.Status), lending.CreatedBy,
		))
		if err != nil {
			return nil, fmt.Errorf("insert lending: %w", err)
		}
		return created, nil
	})
}

func (r *postgresRepository) Close(ctx context.Context, id uuid.UUID, returnedAt time.Time, actorID uuid.UUID) (*model.Lending, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Lending, error) {
		// guarded close: request return đồng thời thứ hai sẽ thấy 0 rows
		query := `
			UPDATE lendings
			SET status = CASE WHEN $2 > due_date THEN $3 ELSE $4 END,
			    returned_date = $2,
			    returned_by = $5
			WHERE id = $1 AND status IN ($6, $7)
			RETURNING ` + lendingColumns

		closed, err := scanLending(tx.QueryRow(ctx, query,
			id, returnedAt, string(model.StatusReturnedLate), string(model.StatusReturned), actorID,
			string(model.StatusBorrowed), string(model.StatusOverdue),
		))
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("close lending: %w", err)
			}
			return nil, classifyNotClosed(ctx, tx, id)
		}

		books := bookRepository.NewPostgresRepository(tx)
		if _, err := books.IncrementAvailable(ctx, closed.BookID); err != nil {
			switch {
			case bookModel.IsNotFoundError(err):
				logger.Warn("Returned lending references a missing book", map[string]interface{}{
					"lending_id": closed.ID,
					"book_id":    closed.BookID,
				})
			case errors.Is(err, bookModel.ErrCopiesAtTotal):
				return nil, fmt.Errorf("%w: book_id=%s lending_id=%s: %v",
					model.ErrCopyCountInvariant, closed.BookID, closed.ID, err)
			default:
				return nil, err
			}
		}
		return closed, nil
	})
}

// classifyNotClosed phân biệt lending không tồn tại với lending đã đóng
func classifyNotClosed(ctx context.Context, db database.DBTX, id uuid.UUID) error {
	var status string
	err := db.QueryRow(ctx, `SELECT status FROM lendings WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewLendingNotFoundError(id)
		}
		return fmt.Errorf("get lending status: %w", err)
	}
	return model.NewAlreadyReturnedError(id, model.Status(status))
}

// ========================================
// READ
// ========================================

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LendingDetail, error) {
	d, err := scanDetail(r.pool.QueryRow(ctx, detailSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewLendingNotFoundError(id)
		}
		return nil, fmt.Errorf("get lending: %w", err)
	}
	return d, nil
}

func (r *postgresRepository) List(ctx context.Context, filter model.ListFilter) ([]model.LendingDetail, error) {
	var where utils.WhereBuilder
	if filter.ReaderID != nil {
		where.Add("l.reader_id = ?", *filter.ReaderID)
	}
	if filter.BookID != nil {
		where.Add("l.book_id = ?", *filter.BookID)
	}

	query := detailSelect + where.SQL() + ` ORDER BY l.borrowed_date DESC, l.id DESC`
	return r.queryDetails(ctx, query, where.Args()...)
}

func (r *postgresRepository) FindOverdue(ctx context.Context, asOf time.Time, readerID *uuid.UUID) ([]model.LendingDetail, error) {
	var where utils.WhereBuilder
	where.Add("((l.status = 'borrowed' AND l.due_date < ?) OR l.status = 'overdue')", asOf)
	if readerID != nil {
		where.Add("l.reader_id = ?", *readerID)
	}

	query := detailSelect + where.SQL() + ` ORDER BY l.due_date ASC, l.id ASC`
	return r.queryDetails(ctx, query, where.Args()...)
}

func (r *postgresRepository) queryDetails(ctx context.Context, query string, args ...any) ([]model.LendingDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lendings: %w", err)
	}
	defer rows.Close()

	lendings := make([]model.LendingDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lending: %w", err)
		}
		lendings = append(lendings, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lendings: %w", err)
	}
	return lendings, nil
}
