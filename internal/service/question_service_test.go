package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type fakeQuestionStore struct {
	questions map[string]*model.Question
	options   map[string][]model.QuestionOption
	catalog   []model.Question
}

func newFakeQuestionStore(items ...*model.Question) *fakeQuestionStore {
	f := &fakeQuestionStore{
		questions: map[string]*model.Question{},
		options:   map[string][]model.QuestionOption{},
	}
	for _, q := range items {
		f.questions[q.Key] = q
	}
	return f
}

func (f *fakeQuestionStore) List(_ context.Context) ([]model.Question, error) { return nil, nil }

func (f *fakeQuestionStore) ListActive(_ context.Context) ([]model.Question, error) {
	return f.catalog, nil
}

func (f *fakeQuestionStore) ListActiveOptionsByKeys(_ context.Context, questionKeys []string) ([]model.QuestionOption, error) {
	var out []model.QuestionOption
	for _, key := range questionKeys {
		for _, o := range f.options[key] {
			if o.IsActive {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) GetByKey(_ context.Context, key string) (*model.Question, error) {
	if q, ok := f.questions[key]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeQuestionStore) Upsert(_ context.Context, q *model.Question) error {
	stored := *q
	f.questions[q.Key] = &stored
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, key string) (bool, error) {
	if _, ok := f.questions[key]; !ok {
		return false, nil
	}
	delete(f.questions, key)
	return true, nil
}

func (f *fakeQuestionStore) ListOptions(_ context.Context, key string) ([]model.QuestionOption, error) {
	return f.options[key], nil
}

func (f *fakeQuestionStore) UpsertOption(_ context.Context, o *model.QuestionOption) error {
	f.options[o.QuestionKey] = append(f.options[o.QuestionKey], *o)
	return nil
}

func (f *fakeQuestionStore) DeleteOption(_ context.Context, key, option string) (bool, error) {
	opts := f.options[key]
	for i, o := range opts {
		if o.OptionKey == option {
			f.options[key] = append(opts[:i], opts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeCatalogTranslations struct {
	rows []model.Translation
}

func (f *fakeCatalogTranslations) ListForLangs(_ context.Context, keys []string, langs []string) ([]model.Translation, error) {
	wantKey := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wantKey[k] = struct{}{}
	}
	wantLang := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		wantLang[l] = struct{}{}
	}
	var out []model.Translation
	for _, row := range f.rows {
		if _, ok := wantKey[row.Key]; !ok {
			continue
		}
		if _, ok := wantLang[row.Lang]; !ok {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func newTestQuestionService(store *fakeQuestionStore) *QuestionService {
	return NewQuestionService(store, &fakeCatalogTranslations{}, "de", zerolog.Nop())
}

func TestUpsertQuestionRejectsBadConfig(t *testing.T) {
	svc := newTestQuestionService(newFakeQuestionStore())

	_, err := svc.Upsert(context.Background(), &model.UpsertQuestionRequest{
		QuestionKey: "wellbeing",
		Type:        "slider",
		Config:      json.RawMessage(`{"min":"not a number"}`),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpsertQuestionDecodesTypedConfig(t *testing.T) {
	store := newFakeQuestionStore()
	svc := newTestQuestionService(store)

	q, err := svc.Upsert(context.Background(), &model.UpsertQuestionRequest{
		QuestionKey: "wellbeing",
		Type:        "slider",
		IsActive:    true,
		Config:      json.RawMessage(`{"min":0,"max":100,"step":1,"default":50}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Config.Slider == nil || q.Config.Slider.Max != 100 {
		t.Errorf("typed config not decoded: %#v", q.Config)
	}
}

func TestDeleteQuestionNotFound(t *testing.T) {
	svc := newTestQuestionService(newFakeQuestionStore())

	if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsertOptionRequiresMultiQuestion(t *testing.T) {
	store := newFakeQuestionStore(
		&model.Question{Key: "wellbeing", Type: model.QuestionTypeSlider},
		&model.Question{Key: "reasons", Type: model.QuestionTypeMulti},
	)
	svc := newTestQuestionService(store)
	ctx := context.Background()

	_, err := svc.UpsertOption(ctx, &model.UpsertOptionRequest{QuestionKey: "wellbeing", OptionKey: "x"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error on non-multi question, got %v", err)
	}

	_, err = svc.UpsertOption(ctx, &model.UpsertOptionRequest{QuestionKey: "ghost", OptionKey: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found on unknown question, got %v", err)
	}

	o, err := svc.UpsertOption(ctx, &model.UpsertOptionRequest{QuestionKey: "reasons", OptionKey: "noise"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.IsActive {
		t.Error("new options must default to active")
	}
}

func TestPublicCatalogEmpty(t *testing.T) {
	svc := newTestQuestionService(newFakeQuestionStore())

	got, err := svc.PublicCatalog(context.Background(), "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil catalog, got %#v", got)
	}
}

func TestPublicCatalogAssemblesTranslations(t *testing.T) {
	store := newFakeQuestionStore()
	store.catalog = []model.Question{
		{Key: "wellbeing", Type: model.QuestionTypeSlider, Required: true, Sort: 10},
		{Key: "reasons", Type: model.QuestionTypeMulti, Sort: 20},
	}
	store.options["reasons"] = []model.QuestionOption{
		{QuestionKey: "reasons", OptionKey: "noise", Sort: 1, IsActive: true},
		{QuestionKey: "reasons", OptionKey: "light", Sort: 2, IsActive: true},
		{QuestionKey: "reasons", OptionKey: "old", Sort: 3, IsActive: false},
	}
	translations := &fakeCatalogTranslations{rows: []model.Translation{
		{Key: "questions.wellbeing.label", Lang: "en", Text: "How are you?"},
		{Key: "questions.wellbeing.legend_low", Lang: "de", Text: "schlecht"},
		{Key: "questions.reasons.label", Lang: "de", Text: "Gründe"},
		{Key: "options.reasons.noise", Lang: "en", Text: "Noise"},
	}}
	svc := NewQuestionService(store, translations, "de", zerolog.Nop())

	got, err := svc.PublicCatalog(context.Background(), "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}

	slider := got[0]
	if slider.Key != "wellbeing" || !slider.Required || slider.Sort != 10 {
		t.Errorf("catalog question fields not carried: %#v", slider)
	}
	if slider.Label != "How are you?" {
		t.Errorf("unexpected slider label: %q", slider.Label)
	}
	// Legends fall back through the fallback language, then empty string.
	if slider.LegendLow == nil || *slider.LegendLow != "schlecht" {
		t.Errorf("unexpected legend_low: %v", slider.LegendLow)
	}
	if slider.LegendHigh == nil || *slider.LegendHigh != "" {
		t.Errorf("unexpected legend_high: %v", slider.LegendHigh)
	}

	multi := got[1]
	if multi.Label != "Gründe" {
		t.Errorf("fallback language label not used: %q", multi.Label)
	}
	if len(multi.Options) != 2 {
		t.Fatalf("inactive options must be dropped, got %d", len(multi.Options))
	}
	if multi.Options[0].Label != "Noise" {
		t.Errorf("unexpected option label: %q", multi.Options[0].Label)
	}
	// Untranslated options fall back to the option key.
	if multi.Options[1].Label != "light" {
		t.Errorf("unexpected option fallback label: %q", multi.Options[1].Label)
	}
}

func TestPublicCatalogEmptyLangUsesFallback(t *testing.T) {
	store := newFakeQuestionStore()
	store.catalog = []model.Question{{Key: "mood", Type: model.QuestionTypeText, Sort: 1}}
	translations := &fakeCatalogTranslations{rows: []model.Translation{
		{Key: "questions.mood.label", Lang: "de", Text: "Stimmung"},
	}}
	svc := NewQuestionService(store, translations, "de", zerolog.Nop())

	got, err := svc.PublicCatalog(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Label != "Stimmung" {
		t.Errorf("fallback language not applied: %#v", got)
	}
}
