package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type ContentRepository struct {
	db *pgxpool.Pool
}

func NewContentRepository(db *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) List(ctx context.Context) ([]model.ContentPage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT page_key, lang, title, body
		FROM content_pages
		ORDER BY page_key ASC, lang ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ContentPage
	for rows.Next() {
		var p model.ContentPage
		if err := rows.Scan(&p.PageKey, &p.Lang, &p.Title, &p.Body); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *ContentRepository) Get(ctx context.Context, pageKey, lang string) (*model.ContentPage, error) {
	var p model.ContentPage
	err := r.db.QueryRow(ctx, `
		SELECT page_key, lang, title, body
		FROM content_pages WHERE page_key = $1 AND lang = $2`, pageKey, lang).
		Scan(&p.PageKey, &p.Lang, &p.Title, &p.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PageKeysByLang returns the distinct page keys present in a language.
func (r *ContentRepository) PageKeysByLang(ctx context.Context, lang string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT page_key FROM content_pages WHERE lang = $1 ORDER BY page_key ASC`, lang)
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

func (r *ContentRepository) Upsert(ctx context.Context, p *model.ContentPage) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO content_pages (page_key, lang, title, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (page_key, lang) DO UPDATE
		SET title = EXCLUDED.title, body = EXCLUDED.body, updated_at = NOW()`,
		p.PageKey, p.Lang, p.Title, p.Body)
	return err
}

func (r *ContentRepository) Delete(ctx context.Context, pageKey, lang string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM content_pages WHERE page_key = $1 AND lang = $2`, pageKey, lang)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
