package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type LanguageRepository struct {
	db *pgxpool.Pool
}

func NewLanguageRepository(db *pgxpool.Pool) *LanguageRepository {
	return &LanguageRepository{db: db}
}

func (r *LanguageRepository) List(ctx context.Context) ([]model.Language, error) {
	rows, err := r.db.Query(ctx, `
		SELECT lang, label, enabled FROM languages ORDER BY lang ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLanguages(rows)
}

func (r *LanguageRepository) ListEnabled(ctx context.Context) ([]model.Language, error) {
	rows, err := r.db.Query(ctx, `
		SELECT lang, label, enabled FROM languages WHERE enabled = TRUE ORDER BY lang ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLanguages(rows)
}

func scanLanguages(rows pgx.Rows) ([]model.Language, error) {
	var items []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.Lang, &l.Label, &l.Enabled); err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *LanguageRepository) Get(ctx context.Context, lang string) (*model.Language, error) {
	var l model.Language
	err := r.db.QueryRow(ctx, `
		SELECT lang, label, enabled FROM languages WHERE lang = $1`, lang).
		Scan(&l.Lang, &l.Label, &l.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LanguageRepository) Upsert(ctx context.Context, l *model.Language) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO languages (lang, label, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (lang) DO UPDATE
		SET label = EXCLUDED.label, enabled = EXCLUDED.enabled`,
		l.Lang, l.Label, l.Enabled)
	return err
}

func (r *LanguageRepository) SetEnabled(ctx context.Context, lang string, enabled bool) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE languages SET enabled = $2 WHERE lang = $1`, lang, enabled)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LanguageRepository) Delete(ctx context.Context, lang string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM languages WHERE lang = $1`, lang)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
