package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type TranslationRepository struct {
	db *pgxpool.Pool
}

func NewTranslationRepository(db *pgxpool.Pool) *TranslationRepository {
	return &TranslationRepository{db: db}
}

// ListForLangs returns the translations for the given keys in the given
// languages. Requested and fallback language are fetched together so the
// resolver needs a single round trip.
func (r *TranslationRepository) ListForLangs(ctx context.Context, keys []string, langs []string) ([]model.Translation, error) {
	if len(keys) == 0 || len(langs) == 0 {
		return []model.Translation{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT translation_key, lang, text
		FROM translations
		WHERE translation_key = ANY($1) AND lang = ANY($2)`, keys, langs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Translation
	for rows.Next() {
		var t model.Translation
		if err := rows.Scan(&t.Key, &t.Lang, &t.Text); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListByLang returns all translations of one language, optionally restricted
// to keys starting with prefix.
func (r *TranslationRepository) ListByLang(ctx context.Context, lang, prefix string) ([]model.Translation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT translation_key, lang, text
		FROM translations
		WHERE lang = $1 AND ($2 = '' OR translation_key LIKE $2 || '%')
		ORDER BY translation_key ASC`, lang, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Translation
	for rows.Next() {
		var t model.Translation
		if err := rows.Scan(&t.Key, &t.Lang, &t.Text); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// KeysByLang returns the distinct translation keys present in a language.
func (r *TranslationRepository) KeysByLang(ctx context.Context, lang string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT translation_key FROM translations WHERE lang = $1 ORDER BY translation_key ASC`, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Upsert creates or rewrites one translation entry.
func (r *TranslationRepository) Upsert(ctx context.Context, t *model.Translation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO translations (translation_key, lang, text)
		VALUES ($1, $2, $3)
		ON CONFLICT (translation_key, lang) DO UPDATE
		SET text = EXCLUDED.text, updated_at = NOW()`,
		t.Key, t.Lang, t.Text)
	return err
}

// Delete removes one translation entry.
func (r *TranslationRepository) Delete(ctx context.Context, key, lang string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM translations WHERE translation_key = $1 AND lang = $2`, key, lang)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
