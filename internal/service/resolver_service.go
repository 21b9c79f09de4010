package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type resolverQuestionnaireStore interface {
	GetByKey(ctx context.Context, key string) (*model.Questionnaire, error)
	ListSlots(ctx context.Context, questionnaireID int) ([]model.Slot, error)
}

type resolverQuestionStore interface {
	ListByKeys(ctx context.Context, keys []string) ([]model.Question, error)
	ListActiveOptionsByKeys(ctx context.Context, questionKeys []string) ([]model.QuestionOption, error)
}

type resolverTranslationStore interface {
	ListForLangs(ctx context.Context, keys []string, langs []string) ([]model.Translation, error)
}

// ResolverService turns a questionnaire key into the final ordered question
// list a visitor sees: it walks the slots in order, picks questions per slot
// mode, and attaches translated labels with language fallback.
type ResolverService struct {
	questionnaires resolverQuestionnaireStore
	questions      resolverQuestionStore
	translations   resolverTranslationStore
	fallbackLang   string
	shuffle        func([]string)
	log            zerolog.Logger
}

func NewResolverService(
	questionnaires resolverQuestionnaireStore,
	questions resolverQuestionStore,
	translations resolverTranslationStore,
	fallbackLang string,
	log zerolog.Logger,
) *ResolverService {
	return &ResolverService{
		questionnaires: questionnaires,
		questions:      questions,
		translations:   translations,
		fallbackLang:   fallbackLang,
		shuffle: func(keys []string) {
			rand.Shuffle(len(keys), func(i, j int) {
				keys[i], keys[j] = keys[j], keys[i]
			})
		},
		log: log.With().Str("component", "resolver_service").Logger(),
	}
}

// SetShuffle replaces the pool shuffle, used by tests for determinism.
func (s *ResolverService) SetShuffle(fn func([]string)) {
	s.shuffle = fn
}

// Resolve builds the question list for one questionnaire in one language.
//
// An unknown and an inactive questionnaire are indistinguishable to the
// caller; both return ErrNotFound so the public API leaks nothing about
// disabled configurations.
func (s *ResolverService) Resolve(ctx context.Context, questionnaireKey, lang string) ([]model.ResolvedQuestion, error) {
	q, err := s.questionnaires.GetByKey(ctx, questionnaireKey)
	if err != nil {
		return nil, err
	}
	if q == nil || !q.IsActive {
		return nil, fmt.Errorf("questionnaire %q: %w", questionnaireKey, ErrNotFound)
	}

	slots, err := s.questionnaires.ListSlots(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	picks := s.pickSlots(slots)

	resolved := []model.ResolvedQuestion{}
	if len(picks) == 0 {
		return resolved, nil
	}

	keys := make([]string, 0, len(picks))
	seen := make(map[string]struct{}, len(picks))
	for _, p := range picks {
		for _, k := range p.keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}

	questions, err := s.questions.ListByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	questionByKey := make(map[string]model.Question, len(questions))
	for _, question := range questions {
		questionByKey[question.Key] = question
	}

	options, err := s.questions.ListActiveOptionsByKeys(ctx, keys)
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

	counter := 0
	for _, p := range picks {
		for _, key := range p.keys {
			question, ok := questionByKey[key]
			if !ok {
				// Slot references a question that no longer exists.
				s.log.Warn().Str("question_key", key).Msg("skipping dangling slot assignment")
				continue
			}

			entry := model.ResolvedQuestion{
				Key:      question.Key,
				Type:     question.Type,
				Required: p.required,
				Sort:     p.sort*100 + counter,
				Config:   question.Config,
				Label:    textOr(texts, "questions."+question.Key+".label", question.Key),
			}

			if question.Type == model.QuestionTypeSlider {
				low := textOr(texts, "questions."+question.Key+".legend_low", "")
				high := textOr(texts, "questions."+question.Key+".legend_high", "")
				entry.LegendLow = &low
				entry.LegendHigh = &high
			}

			for _, o := range optionsByQuestion[question.Key] {
				entry.Options = append(entry.Options, model.ResolvedOption{
					Key:   o.OptionKey,
					Sort:  o.Sort,
					Label: textOr(texts, "options."+question.Key+"."+o.OptionKey, o.OptionKey),
				})
			}

			resolved = append(resolved, entry)
			counter++
		}
	}

	return resolved, nil
}

type slotPick struct {
	sort     int
	required bool
	keys     []string
}

// pickSlots selects the question keys per slot. Fixed slots take their first
// assignment; pool slots draw pool_count distinct keys from a shuffled copy,
// clamped to at least one and at most the assignment count.
func (s *ResolverService) pickSlots(slots []model.Slot) []slotPick {
	var picks []slotPick
	for _, slot := range slots {
		if len(slot.Questions) == 0 {
			continue
		}

		var keys []string
		switch slot.Mode {
		case model.SlotModePool:
			count := slot.PoolCount
			if count < 1 {
				count = 1
			}
			if count > len(slot.Questions) {
				count = len(slot.Questions)
			}
			pool := make([]string, len(slot.Questions))
			copy(pool, slot.Questions)
			s.shuffle(pool)
			keys = pool[:count]
		default:
			keys = slot.Questions[:1]
		}

		picks = append(picks, slotPick{sort: slot.Sort, required: slot.Required, keys: keys})
	}
	return picks
}

// questionTexts fetches the translations for every label the given questions
// and options can need, in the requested and the fallback language together,
// and merges them with the requested language winning.
func questionTexts(ctx context.Context, store resolverTranslationStore, lang, fallback string, questions []model.Question, options []model.QuestionOption) (map[string]string, error) {
	keys := make([]string, 0, len(questions)*3+len(options))
	for _, q := range questions {
		keys = append(keys, "questions."+q.Key+".label")
		if q.Type == model.QuestionTypeSlider {
			keys = append(keys, "questions."+q.Key+".legend_low", "questions."+q.Key+".legend_high")
		}
	}
	for _, o := range options {
		keys = append(keys, "options."+o.QuestionKey+"."+o.OptionKey)
	}
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	langs := []string{lang}
	if lang != fallback {
		langs = append(langs, fallback)
	}
	rows, err := store.ListForLangs(ctx, keys, langs)
	if err != nil {
		return nil, err
	}
	return MergeTranslations(rows, lang, fallback), nil
}

// MergeTranslations folds per-language rows into one key to text map. The
// fallback language fills first and the requested language overwrites, so a
// key translated in both ends up with the requested text.
func MergeTranslations(rows []model.Translation, requested, fallback string) map[string]string {
	merged := make(map[string]string, len(rows))
	for _, t := range rows {
		if t.Lang == fallback {
			merged[t.Key] = t.Text
		}
	}
	for _, t := range rows {
		if t.Lang == requested {
			merged[t.Key] = t.Text
		}
	}
	return merged
}

func textOr(texts map[string]string, key, fallback string) string {
	if v, ok := texts[key]; ok {
		return v
	}
	return fallback
}
