package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// List returns the full question catalog ordered by sort.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	rows, err := r.db.Query(ctx, `
		SELECT question_key, question_type, required, sort, is_active, COALESCE(config, '{}')
		FROM questions
		ORDER BY sort ASC, question_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListActive returns active questions only.
func (r *QuestionRepository) ListActive(ctx context.Context) ([]model.Question, error) {
	rows, err := r.db.Query(ctx, `
		SELECT question_key, question_type, required, sort, is_active, COALESCE(config, '{}')
		FROM questions
		WHERE is_active = TRUE
		ORDER BY sort ASC, question_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListByKeys returns the questions matching the given keys. Missing keys are
// silently absent from the result.
func (r *QuestionRepository) ListByKeys(ctx context.Context, keys []string) ([]model.Question, error) {
	if len(keys) == 0 {
		return []model.Question{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT question_key, question_type, required, sort, is_active, COALESCE(config, '{}')
		FROM questions
		WHERE question_key = ANY($1)`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var items []model.Question
	for rows.Next() {
		var q model.Question
		var raw []byte
		if err := rows.Scan(&q.Key, &q.Type, &q.Required, &q.Sort, &q.IsActive, &raw); err != nil {
			return nil, err
		}
		cfg, err := model.DecodeQuestionConfig(q.Type, raw)
		if err != nil {
			return nil, err
		}
		q.Config = cfg
		items = append(items, q)
	}
	return items, rows.Err()
}

// GetByKey returns one question, or nil when absent.
func (r *QuestionRepository) GetByKey(ctx context.Context, key string) (*model.Question, error) {
	var q model.Question
	var raw []byte
	err := r.db.QueryRow(ctx, `
		SELECT question_key, question_type, required, sort, is_active, COALESCE(config, '{}')
		FROM questions WHERE question_key = $1`, key).
		Scan(&q.Key, &q.Type, &q.Required, &q.Sort, &q.IsActive, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg, err := model.DecodeQuestionConfig(q.Type, raw)
	if err != nil {
		return nil, err
	}
	q.Config = cfg
	return &q, nil
}

// Upsert creates or rewrites a question keyed by question_key.
func (r *QuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	cfg, err := q.Config.Encode()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO questions (question_key, question_type, required, sort, is_active, config)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (question_key) DO UPDATE
		SET question_type = EXCLUDED.question_type,
		    required = EXCLUDED.required,
		    sort = EXCLUDED.sort,
		    is_active = EXCLUDED.is_active,
		    config = EXCLUDED.config,
		    updated_at = NOW()`,
		q.Key, q.Type, q.Required, q.Sort, q.IsActive, cfg)
	return err
}

// Delete removes a question; its options and slot assignments cascade.
func (r *QuestionRepository) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE question_key = $1`, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListOptions returns all options of one question ordered by sort.
func (r *QuestionRepository) ListOptions(ctx context.Context, questionKey string) ([]model.QuestionOption, error) {
	rows, err := r.db.Query(ctx, `
		SELECT question_key, option_key, sort, is_active
		FROM question_options
		WHERE question_key = $1
		ORDER BY sort ASC, option_key ASC`, questionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOptions(rows)
}

// ListActiveOptionsByKeys returns the active options of the given questions
// ordered by sort within each question.
func (r *QuestionRepository) ListActiveOptionsByKeys(ctx context.Context, questionKeys []string) ([]model.QuestionOption, error) {
	if len(questionKeys) == 0 {
		return []model.QuestionOption{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT question_key, option_key, sort, is_active
		FROM question_options
		WHERE question_key = ANY($1) AND is_active = TRUE
		ORDER BY question_key ASC, sort ASC, option_key ASC`, questionKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOptions(rows)
}

func scanOptions(rows pgx.Rows) ([]model.QuestionOption, error) {
	var items []model.QuestionOption
	for rows.Next() {
		var o model.QuestionOption
		if err := rows.Scan(&o.QuestionKey, &o.OptionKey, &o.Sort, &o.IsActive); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// UpsertOption creates or rewrites one option of a question.
func (r *QuestionRepository) UpsertOption(ctx context.Context, o *model.QuestionOption) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO question_options (question_key, option_key, sort, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (question_key, option_key) DO UPDATE
		SET sort = EXCLUDED.sort, is_active = EXCLUDED.is_active`,
		o.QuestionKey, o.OptionKey, o.Sort, o.IsActive)
	return err
}

// DeleteOption removes one option.
func (r *QuestionRepository) DeleteOption(ctx context.Context, questionKey, optionKey string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM question_options WHERE question_key = $1 AND option_key = $2`,
		questionKey, optionKey)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
