package repository

import (
	"context"
	"errors"
	"fmt"

	"library-lending-backend/internal/domains/book/model"
	"library-lending-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const bookColumns = `id, title, author, isbn, category, published_year,
	total_copies, available_copies, created_at, updated_at`

// postgresRepository chạy được trên pool hoặc trên pgx.Tx (database.DBTX),
// lending ledger dùng NewPostgresRepository(tx) để giảm/tăng bản trong transaction của nó.
type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.PublishedYear,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		book.ID, book.Title, book.Author, book.ISBN, book.Category, book.PublishedYear,
		book.TotalCopies, book.AvailableCopies, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: isbn=%s", model.ErrISBNAlreadyExists, book.ISBN)
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]model.Book, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := `SELECT ` + bookColumns + ` FROM books ORDER BY title ASC, id ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate books: %w", err)
	}

	return books, total, nil
}

// DecrementAvailable: conditional UPDATE, concurrent checkouts được Postgres
// serialize trên row lock và re-check điều kiện available_copies > 0.
func (r *postgresRepository) DecrementAvailable(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		UPDATE books
		SET available_copies = available_copies - 1,
		    updated_at = NOW()
		WHERE id = $1 AND available_copies > 0
		RETURNING ` + bookColumns

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: book_id=%s", model.ErrNoCopiesAvailable, id)
		}
		return nil, fmt.Errorf("decrement available copies: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) IncrementAvailable(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		UPDATE books
		SET available_copies = available_copies + 1,
		    updated_at = NOW()
		WHERE id = $1 AND available_copies < total_copies
		RETURNING ` + bookColumns

	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("increment available copies: %w", err)
	}

	// 0 rows: book không tồn tại hoặc đã đủ bản
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check book exists: %w", err)
	}
	if !exists {
		return nil, model.NewBookNotFoundError(id)
	}
	return nil, fmt.Errorf("%w: book_id=%s", model.ErrCopiesAtTotal, id)
}
