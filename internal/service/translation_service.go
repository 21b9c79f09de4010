package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/config"
	"github.com/feelmap/feelmap-backend/internal/model"
)

const publicTranslationsTTL = 10 * time.Minute

type translationStore interface {
	ListForLangs(ctx context.Context, keys []string, langs []string) ([]model.Translation, error)
	ListByLang(ctx context.Context, lang, prefix string) ([]model.Translation, error)
	Upsert(ctx context.Context, t *model.Translation) error
	Delete(ctx context.Context, key, lang string) (bool, error)
}

// TranslationService manages translation entries and serves the public
// per-language text map with a short Redis cache in front.
type TranslationService struct {
	store        translationStore
	rdb          *redis.Client
	fallbackLang string
	log          zerolog.Logger
}

func NewTranslationService(store translationStore, rdb *redis.Client, fallbackLang string, log zerolog.Logger) *TranslationService {
	return &TranslationService{
		store:        store,
		rdb:          rdb,
		fallbackLang: fallbackLang,
		log:          log.With().Str("component", "translation_service").Logger(),
	}
}

// ListByLang returns the raw entries of one language for the admin UI.
func (s *TranslationService) ListByLang(ctx context.Context, lang, prefix string) ([]model.Translation, error) {
	return s.store.ListByLang(ctx, lang, prefix)
}

// PublicMap returns the merged key to text map for one language, with the
// fallback language filling gaps. Results are cached in Redis; a cache
// failure degrades to a database read.
func (s *TranslationService) PublicMap(ctx context.Context, lang, prefix string) (map[string]string, error) {
	cacheKey := config.CacheKey.PublicTranslationsKey(lang, prefix)
	if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var m map[string]string
		if json.Unmarshal(cached, &m) == nil {
			return m, nil
		}
	}

	requested, err := s.store.ListByLang(ctx, lang, prefix)
	if err != nil {
		return nil, err
	}
	rows := requested
	if lang != s.fallbackLang {
		fallback, err := s.store.ListByLang(ctx, s.fallbackLang, prefix)
		if err != nil {
			return nil, err
		}
		rows = append(fallback, requested...)
	}
	merged := MergeTranslations(rows, lang, s.fallbackLang)

	if encoded, err := json.Marshal(merged); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, encoded, publicTranslationsTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("lang", lang).Msg("failed to cache translations")
		}
	}
	return merged, nil
}

// Upsert writes one entry and drops the cached maps of its language. The
// fallback language feeds every other language's merge, so a fallback write
// invalidates all languages.
func (s *TranslationService) Upsert(ctx context.Context, req *model.UpsertTranslationRequest) (*model.Translation, error) {
	t := &model.Translation{Key: req.TranslationKey, Lang: req.Lang, Text: req.Text}
	if err := s.store.Upsert(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.Lang)
	return t, nil
}

func (s *TranslationService) Delete(ctx context.Context, key, lang string) error {
	deleted, err := s.store.Delete(ctx, key, lang)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("translation %q (%s): %w", key, lang, ErrNotFound)
	}
	s.invalidate(ctx, lang)
	return nil
}

func (s *TranslationService) invalidate(ctx context.Context, lang string) {
	pattern := config.CacheKey.PublicTranslationsPattern(lang)
	if lang == s.fallbackLang {
		pattern = config.CacheKey.PublicTranslationsPattern("*")
	}

	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", iter.Val()).Msg("failed to drop cached translations")
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Str("lang", lang).Msg("translation cache invalidation scan failed")
	}
}
