package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type fakeResolverStore struct {
	questionnaire *model.Questionnaire
	slots         []model.Slot
	questions     []model.Question
	options       []model.QuestionOption
	translations  []model.Translation

	lastLangs []string
}

func (f *fakeResolverStore) GetByKey(_ context.Context, key string) (*model.Questionnaire, error) {
	if f.questionnaire != nil && f.questionnaire.Key == key {
		return f.questionnaire, nil
	}
	return nil, nil
}

func (f *fakeResolverStore) ListSlots(_ context.Context, _ int) ([]model.Slot, error) {
	return f.slots, nil
}

func (f *fakeResolverStore) ListByKeys(_ context.Context, keys []string) ([]model.Question, error) {
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	var out []model.Question
	for _, q := range f.questions {
		if _, ok := want[q.Key]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeResolverStore) ListActiveOptionsByKeys(_ context.Context, questionKeys []string) ([]model.QuestionOption, error) {
	want := make(map[string]struct{}, len(questionKeys))
	for _, k := range questionKeys {
		want[k] = struct{}{}
	}
	var out []model.QuestionOption
	for _, o := range f.options {
		if _, ok := want[o.QuestionKey]; ok && o.IsActive {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out, nil
}

func (f *fakeResolverStore) ListForLangs(_ context.Context, keys []string, langs []string) ([]model.Translation, error) {
	f.lastLangs = langs
	wantKey := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wantKey[k] = struct{}{}
	}
	wantLang := make(map[string]struct{}, len(langs))
	for _, l := range langs {
		wantLang[l] = struct{}{}
	}
	var out []model.Translation
	for _, t := range f.translations {
		_, keyOK := wantKey[t.Key]
		_, langOK := wantLang[t.Lang]
		if keyOK && langOK {
			out = append(out, t)
		}
	}
	return out, nil
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func newTestResolver(store *fakeResolverStore) *ResolverService {
	return NewResolverService(store, store, store, "de", zerolog.Nop())
}

func activeQuestionnaire() *model.Questionnaire {
	return &model.Questionnaire{ID: 1, Key: "default", Name: "Standard", IsActive: true}
}

func TestResolveUnknownQuestionnaire(t *testing.T) {
	svc := newTestResolver(&fakeResolverStore{})
	if _, err := svc.Resolve(context.Background(), "missing", "de"); err == nil {
		t.Fatal("expected error for unknown questionnaire")
	} else if !isNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveInactiveQuestionnaire(t *testing.T) {
	q := activeQuestionnaire()
	q.IsActive = false
	svc := newTestResolver(&fakeResolverStore{questionnaire: q})
	if _, err := svc.Resolve(context.Background(), "default", "de"); !isNotFound(err) {
		t.Fatalf("expected not found for inactive questionnaire, got %v", err)
	}
}

func TestResolveEmptySlots(t *testing.T) {
	store := &fakeResolverStore{questionnaire: activeQuestionnaire()}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestResolveFixedSlotTakesFirstAssignment(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Questions: []string{"mood", "noise"}},
		},
		questions: []model.Question{
			{Key: "mood", Type: model.QuestionTypeText, IsActive: true},
			{Key: "noise", Type: model.QuestionTypeText, IsActive: true},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "mood" {
		t.Fatalf("expected only first assignment, got %#v", got)
	}
}

func TestResolveSlotOrderingAndRequired(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Required: true, Questions: []string{"mood"}},
			{ID: 2, Sort: 2, Mode: model.SlotModeFixed, Required: false, Questions: []string{"noise"}},
		},
		questions: []model.Question{
			{Key: "mood", Type: model.QuestionTypeText, Required: false},
			{Key: "noise", Type: model.QuestionTypeText, Required: true},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	// Sort is slot sort * 100 plus the running position.
	if got[0].Sort != 100 || got[1].Sort != 201 {
		t.Errorf("unexpected sorts: %d, %d", got[0].Sort, got[1].Sort)
	}
	if got[1].Sort <= got[0].Sort {
		t.Error("sorts must be strictly increasing")
	}
	// The slot's required flag wins over the catalog flag.
	if !got[0].Required || got[1].Required {
		t.Errorf("slot required flags not applied: %v, %v", got[0].Required, got[1].Required)
	}
}

func TestResolvePoolCountClamping(t *testing.T) {
	cases := []struct {
		name      string
		poolCount int
		want      int
	}{
		{"zero becomes one", 0, 1},
		{"within range", 2, 2},
		{"above assignment count", 99, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeResolverStore{
				questionnaire: activeQuestionnaire(),
				slots: []model.Slot{
					{ID: 1, Sort: 1, Mode: model.SlotModePool, PoolCount: tc.poolCount, Questions: []string{"a", "b", "c"}},
				},
				questions: []model.Question{
					{Key: "a", Type: model.QuestionTypeText},
					{Key: "b", Type: model.QuestionTypeText},
					{Key: "c", Type: model.QuestionTypeText},
				},
			}
			svc := newTestResolver(store)

			got, err := svc.Resolve(context.Background(), "default", "de")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("expected %d questions, got %d", tc.want, len(got))
			}
		})
	}
}

func TestResolvePoolDrawsDistinctAssignedKeys(t *testing.T) {
	assigned := map[string]struct{}{"a": {}, "b": {}, "c": {}, "d": {}}
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModePool, PoolCount: 2, Questions: []string{"a", "b", "c", "d"}},
		},
		questions: []model.Question{
			{Key: "a", Type: model.QuestionTypeText},
			{Key: "b", Type: model.QuestionTypeText},
			{Key: "c", Type: model.QuestionTypeText},
			{Key: "d", Type: model.QuestionTypeText},
		},
	}
	svc := newTestResolver(store)

	for trial := 0; trial < 200; trial++ {
		got, err := svc.Resolve(context.Background(), "default", "de")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("trial %d: expected 2 questions, got %d", trial, len(got))
		}
		seen := map[string]struct{}{}
		for _, q := range got {
			if _, ok := assigned[q.Key]; !ok {
				t.Fatalf("trial %d: picked unassigned key %q", trial, q.Key)
			}
			if _, dup := seen[q.Key]; dup {
				t.Fatalf("trial %d: duplicate key %q", trial, q.Key)
			}
			seen[q.Key] = struct{}{}
		}
	}
}

func TestResolveDeterministicWithInjectedShuffle(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModePool, PoolCount: 1, Questions: []string{"a", "b", "c"}},
		},
		questions: []model.Question{
			{Key: "a", Type: model.QuestionTypeText},
			{Key: "b", Type: model.QuestionTypeText},
			{Key: "c", Type: model.QuestionTypeText},
		},
	}
	svc := newTestResolver(store)
	svc.SetShuffle(func(keys []string) {
		// Reverse, so the pool pick is deterministic.
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	})

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "c" {
		t.Fatalf("expected reversed pick c, got %#v", got)
	}
}

func TestResolveSkipsDanglingAssignments(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Questions: []string{"ghost"}},
			{ID: 2, Sort: 2, Mode: model.SlotModeFixed, Questions: []string{"mood"}},
		},
		questions: []model.Question{
			{Key: "mood", Type: model.QuestionTypeText},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Key != "mood" {
		t.Fatalf("expected dangling key skipped, got %#v", got)
	}
	// The skipped entry must not advance the running counter.
	if got[0].Sort != 200 {
		t.Errorf("expected sort 200, got %d", got[0].Sort)
	}
}

func TestResolveRepeatedKeyAcrossSlots(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Required: true, Questions: []string{"mood"}},
			{ID: 2, Sort: 2, Mode: model.SlotModeFixed, Required: false, Questions: []string{"mood"}},
		},
		questions: []model.Question{
			{Key: "mood", Type: model.QuestionTypeText},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A key assigned in two slots is emitted once per slot, each carrying
	// that slot's required flag and position.
	if len(got) != 2 {
		t.Fatalf("expected one entry per slot, got %d", len(got))
	}
	if !got[0].Required || got[0].Sort != 100 {
		t.Errorf("unexpected first entry: required=%v sort=%d", got[0].Required, got[0].Sort)
	}
	if got[1].Required || got[1].Sort != 201 {
		t.Errorf("unexpected second entry: required=%v sort=%d", got[1].Required, got[1].Sort)
	}
}

func TestResolveTranslationFallback(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Questions: []string{"mood"}},
			{ID: 2, Sort: 2, Mode: model.SlotModeFixed, Questions: []string{"noise"}},
			{ID: 3, Sort: 3, Mode: model.SlotModeFixed, Questions: []string{"other"}},
		},
		questions: []model.Question{
			{Key: "mood", Type: model.QuestionTypeText},
			{Key: "noise", Type: model.QuestionTypeText},
			{Key: "other", Type: model.QuestionTypeText},
		},
		translations: []model.Translation{
			{Key: "questions.mood.label", Lang: "en", Text: "How do you feel?"},
			{Key: "questions.mood.label", Lang: "de", Text: "Wie geht es dir?"},
			{Key: "questions.noise.label", Lang: "de", Text: "Wie laut ist es?"},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	// Requested language wins over fallback.
	if got[0].Label != "How do you feel?" {
		t.Errorf("expected requested-language label, got %q", got[0].Label)
	}
	// Fallback language fills the gap.
	if got[1].Label != "Wie laut ist es?" {
		t.Errorf("expected fallback label, got %q", got[1].Label)
	}
	// Untranslated labels fall back to the raw key.
	if got[2].Label != "other" {
		t.Errorf("expected raw key label, got %q", got[2].Label)
	}
}

func TestResolveSingleLangQueryWhenRequestedIsFallback(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Questions: []string{"mood"}},
		},
		questions: []model.Question{
			{Key: "mood", Type: model.QuestionTypeText},
		},
	}
	svc := newTestResolver(store)

	if _, err := svc.Resolve(context.Background(), "default", "de"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.lastLangs) != 1 || store.lastLangs[0] != "de" {
		t.Errorf("expected single-language fetch, got %v", store.lastLangs)
	}
}

func TestResolveSliderLegends(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Questions: []string{"wellbeing"}},
			{ID: 2, Sort: 2, Mode: model.SlotModeFixed, Questions: []string{"note"}},
		},
		questions: []model.Question{
			{Key: "wellbeing", Type: model.QuestionTypeSlider},
			{Key: "note", Type: model.QuestionTypeText},
		},
		translations: []model.Translation{
			{Key: "questions.wellbeing.legend_low", Lang: "de", Text: "schlecht"},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slider := got[0]
	if slider.LegendLow == nil || *slider.LegendLow != "schlecht" {
		t.Errorf("unexpected legend_low: %v", slider.LegendLow)
	}
	// Missing legend becomes the empty string, not an absent field.
	if slider.LegendHigh == nil || *slider.LegendHigh != "" {
		t.Errorf("unexpected legend_high: %v", slider.LegendHigh)
	}
	// Non-sliders carry no legends at all.
	if got[1].LegendLow != nil || got[1].LegendHigh != nil {
		t.Errorf("text question must not carry legends")
	}
}

func TestResolveMultiOptions(t *testing.T) {
	store := &fakeResolverStore{
		questionnaire: activeQuestionnaire(),
		slots: []model.Slot{
			{ID: 1, Sort: 1, Mode: model.SlotModeFixed, Questions: []string{"reasons"}},
		},
		questions: []model.Question{
			{Key: "reasons", Type: model.QuestionTypeMulti},
		},
		options: []model.QuestionOption{
			{QuestionKey: "reasons", OptionKey: "light", Sort: 2, IsActive: true},
			{QuestionKey: "reasons", OptionKey: "noise", Sort: 1, IsActive: true},
			{QuestionKey: "reasons", OptionKey: "hidden", Sort: 3, IsActive: false},
		},
		translations: []model.Translation{
			{Key: "options.reasons.noise", Lang: "de", Text: "Lärm"},
		},
	}
	svc := newTestResolver(store)

	got, err := svc.Resolve(context.Background(), "default", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := got[0].Options
	if len(opts) != 2 {
		t.Fatalf("expected 2 active options, got %d", len(opts))
	}
	if opts[0].Key != "noise" || opts[1].Key != "light" {
		t.Errorf("options not sorted: %#v", opts)
	}
	if opts[0].Label != "Lärm" {
		t.Errorf("expected translated option label, got %q", opts[0].Label)
	}
	// Untranslated option labels fall back to the option key.
	if opts[1].Label != "light" {
		t.Errorf("expected option key fallback, got %q", opts[1].Label)
	}
}

func TestMergeTranslations(t *testing.T) {
	rows := []model.Translation{
		{Key: "a", Lang: "de", Text: "de-a"},
		{Key: "a", Lang: "en", Text: "en-a"},
		{Key: "b", Lang: "de", Text: "de-b"},
		{Key: "c", Lang: "fr", Text: "fr-c"},
	}

	got := MergeTranslations(rows, "en", "de")
	if got["a"] != "en-a" {
		t.Errorf("requested language must win, got %q", got["a"])
	}
	if got["b"] != "de-b" {
		t.Errorf("fallback must fill gaps, got %q", got["b"])
	}
	if _, ok := got["c"]; ok {
		t.Errorf("unrelated languages must be ignored")
	}

	if m := MergeTranslations(nil, "en", "de"); len(m) != 0 || m == nil {
		t.Errorf("empty input must yield empty non-nil map, got %#v", m)
	}
}
