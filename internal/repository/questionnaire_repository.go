package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type QuestionnaireRepository struct {
	db *pgxpool.Pool
}

func NewQuestionnaireRepository(db *pgxpool.Pool) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

// List returns all questionnaires with their slot counts, defaults first.
func (r *QuestionnaireRepository) List(ctx context.Context) ([]model.Questionnaire, error) {
	rows, err := r.db.Query(ctx, `
		SELECT q.id, q.questionnaire_key, q.name, COALESCE(q.description, ''),
		       q.is_default, q.is_active,
		       (SELECT COUNT(*) FROM questionnaire_slots s WHERE s.questionnaire_id = q.id)
		FROM questionnaires q
		ORDER BY q.is_default DESC, q.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Questionnaire
	for rows.Next() {
		var q model.Questionnaire
		if err := rows.Scan(&q.ID, &q.Key, &q.Name, &q.Description, &q.IsDefault, &q.IsActive, &q.SlotCount); err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

// GetByID returns the questionnaire with the given id, or nil when absent.
func (r *QuestionnaireRepository) GetByID(ctx context.Context, id int) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.db.QueryRow(ctx, `
		SELECT id, questionnaire_key, name, COALESCE(description, ''), is_default, is_active
		FROM questionnaires WHERE id = $1`, id).
		Scan(&q.ID, &q.Key, &q.Name, &q.Description, &q.IsDefault, &q.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByKey returns the questionnaire with the given key, or nil when absent.
func (r *QuestionnaireRepository) GetByKey(ctx context.Context, key string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.db.QueryRow(ctx, `
		SELECT id, questionnaire_key, name, COALESCE(description, ''), is_default, is_active
		FROM questionnaires WHERE questionnaire_key = $1`, key).
		Scan(&q.ID, &q.Key, &q.Name, &q.Description, &q.IsDefault, &q.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// KeyExists reports whether another questionnaire (id != excludeID) already
// uses the key.
func (r *QuestionnaireRepository) KeyExists(ctx context.Context, key string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM questionnaires WHERE questionnaire_key = $1 AND id <> $2
		)`, key, excludeID).Scan(&exists)
	return exists, err
}

// Insert creates a questionnaire and returns its id.
func (r *QuestionnaireRepository) Insert(ctx context.Context, q *model.Questionnaire) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `
		INSERT INTO questionnaires (questionnaire_key, name, description, is_default, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		q.Key, q.Name, q.Description, q.IsDefault, q.IsActive).Scan(&id)
	return id, err
}

// Update rewrites the mutable fields of a questionnaire.
func (r *QuestionnaireRepository) Update(ctx context.Context, q *model.Questionnaire) error {
	_, err := r.db.Exec(ctx, `
		UPDATE questionnaires
		SET questionnaire_key = $1, name = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5`,
		q.Key, q.Name, q.Description, q.IsActive, q.ID)
	return err
}

// Delete removes a questionnaire; slots and assignments cascade.
func (r *QuestionnaireRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM questionnaires WHERE id = $1`, id)
	return err
}

// ListSlots returns the slots of a questionnaire ordered by sort, each with
// its assigned question keys in assignment order.
func (r *QuestionnaireRepository) ListSlots(ctx context.Context, questionnaireID int) ([]model.Slot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, questionnaire_id, sort, mode, pool_count, required
		FROM questionnaire_slots
		WHERE questionnaire_id = $1
		ORDER BY sort ASC, id ASC`, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.Slot
	index := make(map[int]int)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.ID, &s.QuestionnaireID, &s.Sort, &s.Mode, &s.PoolCount, &s.Required); err != nil {
			return nil, err
		}
		s.Questions = []string{}
		index[s.ID] = len(slots)
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return slots, nil
	}

	qrows, err := r.db.Query(ctx, `
		SELECT sq.slot_id, sq.question_key
		FROM questionnaire_slot_questions sq
		JOIN questionnaire_slots s ON s.id = sq.slot_id
		WHERE s.questionnaire_id = $1
		ORDER BY sq.slot_id ASC, sq.sort ASC, sq.id ASC`, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer qrows.Close()

	for qrows.Next() {
		var slotID int
		var key string
		if err := qrows.Scan(&slotID, &key); err != nil {
			return nil, err
		}
		if i, ok := index[slotID]; ok {
			slots[i].Questions = append(slots[i].Questions, key)
		}
	}
	return slots, qrows.Err()
}

// ReplaceSlots atomically swaps the full slot configuration of a
// questionnaire. Existing slots and their question assignments are removed
// and the new set inserted inside one transaction.
func (r *QuestionnaireRepository) ReplaceSlots(ctx context.Context, questionnaireID int, slots []model.SlotInput) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM questionnaire_slot_questions
		WHERE slot_id IN (SELECT id FROM questionnaire_slots WHERE questionnaire_id = $1)`,
		questionnaireID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM questionnaire_slots WHERE questionnaire_id = $1`, questionnaireID); err != nil {
		return err
	}

	for _, slot := range slots {
		var slotID int
		if err := tx.QueryRow(ctx, `
			INSERT INTO questionnaire_slots (questionnaire_id, sort, mode, pool_count, required)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			questionnaireID, slot.Sort, slot.Mode, slot.PoolCount, slot.Required).Scan(&slotID); err != nil {
			return err
		}
		for i, key := range slot.Questions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO questionnaire_slot_questions (slot_id, question_key, sort)
				VALUES ($1, $2, $3)`,
				slotID, key, i); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}
