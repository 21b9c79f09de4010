package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_audit_logs (user_id, action, target, payload)
		VALUES ($1, $2, $3, $4)`,
		e.UserID, e.Action, e.Target, e.Payload)
	return err
}

// List returns the newest audit entries, capped at limit.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, action, target, COALESCE(payload, 'null'), created_at
		FROM admin_audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Target, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
