package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type PinRepository struct {
	db *pgxpool.Pool
}

func NewPinRepository(db *pgxpool.Pool) *PinRepository {
	return &PinRepository{db: db}
}

// Insert persists a pin with its reasons in one transaction and returns the
// stored record.
func (r *PinRepository) Insert(ctx context.Context, pin *model.Pin) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO pins (floor_index, pos_x, pos_y, pos_z, wellbeing, note, group_key, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		pin.FloorIndex, pin.Position.X, pin.Position.Y, pin.Position.Z,
		pin.Wellbeing, pin.Note, pin.GroupKey, pin.Approved).
		Scan(&pin.ID, &pin.CreatedAt)
	if err != nil {
		return err
	}

	for _, reason := range pin.Reasons {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pin_reasons (pin_id, reason_key) VALUES ($1, $2)`,
			pin.ID, reason); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListApproved returns approved pins, newest first, capped at limit.
func (r *PinRepository) ListApproved(ctx context.Context, limit int) ([]model.Pin, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, floor_index, pos_x, pos_y, pos_z, wellbeing, COALESCE(note, ''), group_key, approved, created_at
		FROM pins
		WHERE approved = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanPinsWithReasons(ctx, rows)
}

// ListAll returns every pin for moderation, newest first.
func (r *PinRepository) ListAll(ctx context.Context, limit int) ([]model.Pin, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, floor_index, pos_x, pos_y, pos_z, wellbeing, COALESCE(note, ''), group_key, approved, created_at
		FROM pins
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanPinsWithReasons(ctx, rows)
}

func (r *PinRepository) scanPinsWithReasons(ctx context.Context, rows pgx.Rows) ([]model.Pin, error) {
	var pins []model.Pin
	index := make(map[int]int)
	var ids []int
	for rows.Next() {
		var p model.Pin
		if err := rows.Scan(&p.ID, &p.FloorIndex, &p.Position.X, &p.Position.Y, &p.Position.Z,
			&p.Wellbeing, &p.Note, &p.GroupKey, &p.Approved, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Reasons = []string{}
		index[p.ID] = len(pins)
		ids = append(ids, p.ID)
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(pins) == 0 {
		return pins, nil
	}

	rrows, err := r.db.Query(ctx, `
		SELECT pin_id, reason_key FROM pin_reasons WHERE pin_id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()

	for rrows.Next() {
		var pinID int
		var reason string
		if err := rrows.Scan(&pinID, &reason); err != nil {
			return nil, err
		}
		if i, ok := index[pinID]; ok {
			pins[i].Reasons = append(pins[i].Reasons, reason)
		}
	}
	return pins, rrows.Err()
}

func (r *PinRepository) SetApproved(ctx context.Context, id int, approved bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE pins SET approved = $2 WHERE id = $1`, id, approved)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PinRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM pins WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID returns one pin with reasons, or nil when absent.
func (r *PinRepository) GetByID(ctx context.Context, id int) (*model.Pin, error) {
	var p model.Pin
	err := r.db.QueryRow(ctx, `
		SELECT id, floor_index, pos_x, pos_y, pos_z, wellbeing, COALESCE(note, ''), group_key, approved, created_at
		FROM pins WHERE id = $1`, id).
		Scan(&p.ID, &p.FloorIndex, &p.Position.X, &p.Position.Y, &p.Position.Z,
			&p.Wellbeing, &p.Note, &p.GroupKey, &p.Approved, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Reasons = []string{}
	rows, err := r.db.Query(ctx, `
		SELECT reason_key FROM pin_reasons WHERE pin_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var reason string
		if err := rows.Scan(&reason); err != nil {
			return nil, err
		}
		p.Reasons = append(p.Reasons, reason)
	}
	return &p, rows.Err()
}
