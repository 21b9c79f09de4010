package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type contentStore interface {
	List(ctx context.Context) ([]model.ContentPage, error)
	Get(ctx context.Context, pageKey, lang string) (*model.ContentPage, error)
	Upsert(ctx context.Context, p *model.ContentPage) error
	Delete(ctx context.Context, pageKey, lang string) (bool, error)
}

// ContentService manages per-language static pages.
type ContentService struct {
	store        contentStore
	fallbackLang string
	log          zerolog.Logger
}

func NewContentService(store contentStore, fallbackLang string, log zerolog.Logger) *ContentService {
	return &ContentService{
		store:        store,
		fallbackLang: fallbackLang,
		log:          log.With().Str("component", "content_service").Logger(),
	}
}

func (s *ContentService) List(ctx context.Context) ([]model.ContentPage, error) {
	return s.store.List(ctx)
}

// PublicGet returns one page in the requested language, falling back to the
// reference language when the translation is missing.
func (s *ContentService) PublicGet(ctx context.Context, pageKey, lang string) (*model.ContentPage, error) {
	p, err := s.store.Get(ctx, pageKey, lang)
	if err != nil {
		return nil, err
	}
	if p == nil && lang != s.fallbackLang {
		p, err = s.store.Get(ctx, pageKey, s.fallbackLang)
		if err != nil {
			return nil, err
		}
	}
	if p == nil {
		return nil, fmt.Errorf("content page %q: %w", pageKey, ErrNotFound)
	}
	return p, nil
}

func (s *ContentService) Upsert(ctx context.Context, req *model.UpsertContentPageRequest) (*model.ContentPage, error) {
	p := &model.ContentPage{
		PageKey: req.PageKey,
		Lang:    req.Lang,
		Title:   req.Title,
		Body:    req.Body,
	}
	if err := s.store.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("page", p.PageKey).Str("lang", p.Lang).Msg("content page saved")
	return p, nil
}

func (s *ContentService) Delete(ctx context.Context, pageKey, lang string) error {
	deleted, err := s.store.Delete(ctx, pageKey, lang)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("content page %q (%s): %w", pageKey, lang, ErrNotFound)
	}
	return nil
}
