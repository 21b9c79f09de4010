package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type languageStore interface {
	List(ctx context.Context) ([]model.Language, error)
	ListEnabled(ctx context.Context) ([]model.Language, error)
	Get(ctx context.Context, lang string) (*model.Language, error)
	Upsert(ctx context.Context, l *model.Language) error
	SetEnabled(ctx context.Context, lang string, enabled bool) (bool, error)
	Delete(ctx context.Context, lang string) (bool, error)
}

type translationKeyStore interface {
	KeysByLang(ctx context.Context, lang string) ([]string, error)
}

type contentKeyStore interface {
	PageKeysByLang(ctx context.Context, lang string) ([]string, error)
}

// LanguageService manages survey languages. A language may only be enabled
// once it carries every translation and content page the reference language
// has.
type LanguageService struct {
	store         languageStore
	translations  translationKeyStore
	content       contentKeyStore
	referenceLang string
	log           zerolog.Logger
}

func NewLanguageService(store languageStore, translations translationKeyStore, content contentKeyStore, referenceLang string, log zerolog.Logger) *LanguageService {
	return &LanguageService{
		store:         store,
		translations:  translations,
		content:       content,
		referenceLang: referenceLang,
		log:           log.With().Str("component", "language_service").Logger(),
	}
}

func (s *LanguageService) List(ctx context.Context) ([]model.Language, error) {
	return s.store.List(ctx)
}

func (s *LanguageService) ListEnabled(ctx context.Context) ([]model.Language, error) {
	return s.store.ListEnabled(ctx)
}

// Upsert creates or updates a language. New languages always start disabled,
// and req.Enabled can only disable: enabling is a separate,
// completeness-gated step (SetEnabled).
func (s *LanguageService) Upsert(ctx context.Context, req *model.UpsertLanguageRequest) (*model.Language, error) {
	lang := strings.ToLower(strings.TrimSpace(req.Lang))
	if lang == "" {
		return nil, NewValidationError(map[string]string{"lang": "language code must not be empty"})
	}

	existing, err := s.store.Get(ctx, lang)
	if err != nil {
		return nil, err
	}

	l := &model.Language{Lang: lang, Label: strings.TrimSpace(req.Label)}
	if existing != nil {
		l.Enabled = existing.Enabled
	}
	if req.Enabled != nil && !*req.Enabled {
		l.Enabled = false
	}
	if err := s.store.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// SetEnabled toggles a language. Enabling checks completeness against the
// reference language first and fails with the missing items attached.
func (s *LanguageService) SetEnabled(ctx context.Context, lang string, enabled bool) (*model.MissingItems, error) {
	l, err := s.store.Get(ctx, lang)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("language %q: %w", lang, ErrNotFound)
	}

	if enabled && lang != s.referenceLang {
		missing, err := s.Missing(ctx, lang)
		if err != nil {
			return nil, err
		}
		if !missing.Complete() {
			return missing, fmt.Errorf("language %q: %w", lang, ErrLanguageIncomplete)
		}
	}

	if _, err := s.store.SetEnabled(ctx, lang, enabled); err != nil {
		return nil, err
	}
	s.log.Info().Str("lang", lang).Bool("enabled", enabled).Msg("language toggled")
	return nil, nil
}

// Delete removes a language. The reference language cannot go away.
func (s *LanguageService) Delete(ctx context.Context, lang string) error {
	if lang == s.referenceLang {
		return fmt.Errorf("reference language cannot be deleted: %w", ErrConflict)
	}
	deleted, err := s.store.Delete(ctx, lang)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("language %q: %w", lang, ErrNotFound)
	}
	return nil
}

// Missing lists the translation keys and content pages present in the
// reference language but absent in lang.
func (s *LanguageService) Missing(ctx context.Context, lang string) (*model.MissingItems, error) {
	refKeys, err := s.translations.KeysByLang(ctx, s.referenceLang)
	if err != nil {
		return nil, err
	}
	langKeys, err := s.translations.KeysByLang(ctx, lang)
	if err != nil {
		return nil, err
	}
	refPages, err := s.content.PageKeysByLang(ctx, s.referenceLang)
	if err != nil {
		return nil, err
	}
	langPages, err := s.content.PageKeysByLang(ctx, lang)
	if err != nil {
		return nil, err
	}

	missing := &model.MissingItems{
		Translations: diffKeys(refKeys, langKeys),
		ContentPages: diffKeys(refPages, langPages),
	}
	return missing, nil
}

// diffKeys returns the entries of ref not present in have, in ref order.
func diffKeys(ref, have []string) []string {
	got := make(map[string]struct{}, len(have))
	for _, k := range have {
		got[k] = struct{}{}
	}
	missing := []string{}
	for _, k := range ref {
		if _, ok := got[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
