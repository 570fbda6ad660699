package repository

import (
	"context"
	"fmt"

	"library-lending-backend/internal/domains/audit/model"
	"library-lending-backend/pkg/database"
)

type postgresRepository struct {
	db database.DBTX
}

func NewPostgresRepository(db database.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, entry *model.Entry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (id, action, performed_by, target_model, target_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, string(entry.Action), entry.PerformedBy, entry.TargetModel, entry.TargetID, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]model.Entry, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, action, performed_by, target_model, target_id, timestamp
		FROM audit_logs
		ORDER BY timestamp DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		var e model.Entry
		var action string
		if err := rows.Scan(&e.ID, &action, &e.PerformedBy, &e.TargetModel, &e.TargetID, &e.Timestamp); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		e.Action = model.Action(action)
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
