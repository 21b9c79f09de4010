package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type questionStore interface {
	List(ctx context.Context) ([]model.Question, error)
	ListActive(ctx context.Context) ([]model.Question, error)
	GetByKey(ctx context.Context, key string) (*model.Question, error)
	Upsert(ctx context.Context, q *model.Question) error
	Delete(ctx context.Context, key string) (bool, error)
	ListOptions(ctx context.Context, questionKey string) ([]model.QuestionOption, error)
	ListActiveOptionsByKeys(ctx context.Context, questionKeys []string) ([]model.QuestionOption, error)
	UpsertOption(ctx context.Context, o *model.QuestionOption) error
	DeleteOption(ctx context.Context, questionKey, optionKey string) (bool, error)
}

// QuestionService manages the question catalog and its options.
type QuestionService struct {
	store        questionStore
	translations resolverTranslationStore
	fallbackLang string
	log          zerolog.Logger
}

func NewQuestionService(store questionStore, translations resolverTranslationStore, fallbackLang string, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		store:        store,
		translations: translations,
		fallbackLang: fallbackLang,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	return s.store.List(ctx)
}

// PublicCatalog returns every active question ready to render: translated
// label, slider legends, and active options with translated labels, ordered
// by the catalog sort. Required and Sort are the catalog question's own, not
// a slot's. Fallbacks match the resolver: raw key for labels, empty string
// for legends, option key for option labels.
func (s *QuestionService) PublicCatalog(ctx context.Context, lang string) ([]model.ResolvedQuestion, error) {
	if lang == "" {
		lang = s.fallbackLang
	}

	questions, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	catalog := []model.ResolvedQuestion{}
	if len(questions) == 0 {
		return catalog, nil
	}

	keys := make([]string, len(questions))
	for i, q := range questions {
		keys[i] = q.Key
	}
	options, err := s.store.ListActiveOptionsByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	optionsByQuestion := make(map[string][]model.QuestionOption)
	for _, o := range options {
		optionsByQuestion[o.QuestionKey] = append(optionsByQuestion[o.QuestionKey], o)
	}

	texts, err := questionTexts(ctx, s.translations, lang, s.fallbackLang, questions, options)
	if err != nil {
		return nil, err
	}

	for _, q := range questions {
		entry := model.ResolvedQuestion{
			Key:      q.Key,
			Type:     q.Type,
			Required: q.Required,
			Sort:     q.Sort,
			Config:   q.Config,
			Label:    textOr(texts, "questions."+q.Key+".label", q.Key),
		}

		if q.Type == model.QuestionTypeSlider {
			low := textOr(texts, "questions."+q.Key+".legend_low", "")
			high := textOr(texts, "questions."+q.Key+".legend_high", "")
			entry.LegendLow = &low
			entry.LegendHigh = &high
		}

		for _, o := range optionsByQuestion[q.Key] {
			entry.Options = append(entry.Options, model.ResolvedOption{
				Key:   o.OptionKey,
				Sort:  o.Sort,
				Label: textOr(texts, "options."+q.Key+"."+o.OptionKey, o.OptionKey),
			})
		}

		catalog = append(catalog, entry)
	}
	return catalog, nil
}

// Get returns one question with its options.
func (s *QuestionService) Get(ctx context.Context, key string) (*model.Question, []model.QuestionOption, error) {
	q, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, fmt.Errorf("question %q: %w", key, ErrNotFound)
	}
	options, err := s.store.ListOptions(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	return q, options, nil
}

// Upsert creates or rewrites a catalog question. The config document must
// decode under the declared question type.
func (s *QuestionService) Upsert(ctx context.Context, req *model.UpsertQuestionRequest) (*model.Question, error) {
	key := strings.TrimSpace(req.QuestionKey)
	if key == "" {
		return nil, NewValidationError(map[string]string{"question_key": "question key must not be empty"})
	}

	qType := model.QuestionType(req.Type)
	cfg, err := model.DecodeQuestionConfig(qType, req.Config)
	if err != nil {
		return nil, NewValidationError(map[string]string{"config": "config does not match question type"})
	}

	q := &model.Question{
		Key:      key,
		Type:     qType,
		Required: req.Required,
		Sort:     req.Sort,
		IsActive: req.IsActive,
		Config:   cfg,
	}
	if err := s.store.Upsert(ctx, q); err != nil {
		return nil, err
	}
	s.log.Info().Str("key", key).Str("type", req.Type).Msg("question saved")
	return q, nil
}

// Delete removes a question. Options and slot assignments referencing it are
// removed with it.
func (s *QuestionService) Delete(ctx context.Context, key string) error {
	deleted, err := s.store.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("question %q: %w", key, ErrNotFound)
	}
	s.log.Info().Str("key", key).Msg("question deleted")
	return nil
}

// UpsertOption creates or rewrites one option. The parent question must
// exist and be a multi question.
func (s *QuestionService) UpsertOption(ctx context.Context, req *model.UpsertOptionRequest) (*model.QuestionOption, error) {
	q, err := s.store.GetByKey(ctx, req.QuestionKey)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("question %q: %w", req.QuestionKey, ErrNotFound)
	}
	if q.Type != model.QuestionTypeMulti {
		return nil, NewValidationError(map[string]string{"question_key": "options require a multi question"})
	}

	o := &model.QuestionOption{
		QuestionKey: req.QuestionKey,
		OptionKey:   strings.TrimSpace(req.OptionKey),
		Sort:        req.Sort,
		IsActive:    true,
	}
	if o.OptionKey == "" {
		return nil, NewValidationError(map[string]string{"option_key": "option key must not be empty"})
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if err := s.store.UpsertOption(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *QuestionService) DeleteOption(ctx context.Context, questionKey, optionKey string) error {
	deleted, err := s.store.DeleteOption(ctx, questionKey, optionKey)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("option %q of question %q: %w", optionKey, questionKey, ErrNotFound)
	}
	return nil
}
