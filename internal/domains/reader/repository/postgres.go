package repository

import (
	"context"
	"errors"
	"fmt"

	"library-lending-backend/internal/domains/reader/model"
	"library-lending-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const readerColumns = `id, name, COALESCE(email, ''), contact_number, address, created_at, updated_at`

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func scanReader(row pgx.Row) (*model.Reader, error) {
	var r model.Reader
	if err := row.Scan(&r.ID, &r.Name, &r.Email, &r.ContactNumber, &r.Address, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *postgresRepository) Create(ctx context.Context, reader *model.Reader) error {
	// email rỗng lưu NULL để unique index chỉ áp dụng cho reader có email
	var email *string
	if reader.Email != "" {
		email = &reader.Email
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO readers (id, name, email, contact_number, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, reader.ID, reader.Name, email, reader.ContactNumber, reader.Address, reader.CreatedAt, reader.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", model.ErrEmailAlreadyExists, reader.Email)
		}
		return fmt.Errorf("insert reader: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reader, error) {
	reader, err := scanReader(r.db.QueryRow(ctx, `SELECT `+readerColumns+` FROM readers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewReaderNotFoundError(id)
		}
		return nil, fmt.Errorf("get reader: %w", err)
	}
	return reader, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*model.Reader, error) {
	reader, err := scanReader(r.db.QueryRow(ctx,
		`SELECT `+readerColumns+` FROM readers WHERE email = $1`, model.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: email=%s", model.ErrReaderNotFound, email)
		}
		return nil, fmt.Errorf("get reader by email: %w", err)
	}
	return reader, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]model.Reader, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM readers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count readers: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+readerColumns+` FROM readers ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list readers: %w", err)
	}
	defer rows.Close()

	readers := make([]model.Reader, 0)
	for rows.Next() {
		reader, err := scanReader(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan reader: %w", err)
		}
		readers = append(readers, *reader)
	}
	return readers, total, rows.Err()
}
