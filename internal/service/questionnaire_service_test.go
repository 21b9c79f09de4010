package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type fakeQuestionnaireStore struct {
	byID       map[int]*model.Questionnaire
	slots      map[int][]model.Slot
	nextID     int
	replaced   []model.SlotInput
	replacedID int
	replaceErr error
}

func newFakeQuestionnaireStore(items ...*model.Questionnaire) *fakeQuestionnaireStore {
	f := &fakeQuestionnaireStore{
		byID:   map[int]*model.Questionnaire{},
		slots:  map[int][]model.Slot{},
		nextID: 1,
	}
	for _, q := range items {
		f.byID[q.ID] = q
		if q.ID >= f.nextID {
			f.nextID = q.ID + 1
		}
	}
	return f
}

func (f *fakeQuestionnaireStore) List(_ context.Context) ([]model.Questionnaire, error) {
	var out []model.Questionnaire
	for _, q := range f.byID {
		out = append(out, *q)
	}
	return out, nil
}

func (f *fakeQuestionnaireStore) GetByID(_ context.Context, id int) (*model.Questionnaire, error) {
	if q, ok := f.byID[id]; ok {
		copied := *q
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeQuestionnaireStore) GetByKey(_ context.Context, key string) (*model.Questionnaire, error) {
	for _, q := range f.byID {
		if q.Key == key {
			copied := *q
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestionnaireStore) KeyExists(_ context.Context, key string, excludeID int) (bool, error) {
	for _, q := range f.byID {
		if q.Key == key && q.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeQuestionnaireStore) Insert(_ context.Context, q *model.Questionnaire) (int, error) {
	id := f.nextID
	f.nextID++
	stored := *q
	stored.ID = id
	f.byID[id] = &stored
	return id, nil
}

func (f *fakeQuestionnaireStore) Update(_ context.Context, q *model.Questionnaire) error {
	stored := *q
	f.byID[q.ID] = &stored
	return nil
}

func (f *fakeQuestionnaireStore) Delete(_ context.Context, id int) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeQuestionnaireStore) ListSlots(_ context.Context, id int) ([]model.Slot, error) {
	return f.slots[id], nil
}

func (f *fakeQuestionnaireStore) ReplaceSlots(_ context.Context, id int, slots []model.SlotInput) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replacedID = id
	f.replaced = slots
	return nil
}

type fakeSlotCatalog struct {
	keys map[string]struct{}
}

func newFakeSlotCatalog(keys ...string) *fakeSlotCatalog {
	f := &fakeSlotCatalog{keys: map[string]struct{}{}}
	for _, k := range keys {
		f.keys[k] = struct{}{}
	}
	return f
}

func (f *fakeSlotCatalog) ListByKeys(_ context.Context, keys []string) ([]model.Question, error) {
	var out []model.Question
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			out = append(out, model.Question{Key: k})
		}
	}
	return out, nil
}

func newTestQuestionnaireService(store *fakeQuestionnaireStore) *QuestionnaireService {
	return NewQuestionnaireService(store, newFakeSlotCatalog("mood", "a", "b", "c"), zerolog.Nop())
}

func TestUpsertQuestionnaireValidation(t *testing.T) {
	svc := newTestQuestionnaireService(newFakeQuestionnaireStore())

	_, err := svc.Upsert(context.Background(), &model.UpsertQuestionnaireRequest{QuestionnaireKey: "  ", Name: ""})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := ValidationFields(err)
	if _, ok := fields["questionnaire_key"]; !ok {
		t.Errorf("expected questionnaire_key field error, got %v", fields)
	}
	if _, ok := fields["name"]; !ok {
		t.Errorf("expected name field error, got %v", fields)
	}
}

func TestUpsertQuestionnaireKeyConflict(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "entrance", Name: "Entrance", IsActive: true},
	)
	svc := newTestQuestionnaireService(store)

	_, err := svc.Upsert(context.Background(), &model.UpsertQuestionnaireRequest{QuestionnaireKey: "entrance", Name: "Another"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpsertQuestionnaireSelfUpdateKeepsKey(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "entrance", Name: "Entrance", IsActive: true},
	)
	svc := newTestQuestionnaireService(store)

	q, err := svc.Upsert(context.Background(), &model.UpsertQuestionnaireRequest{
		ID: 1, QuestionnaireKey: "entrance", Name: "Entrance Hall",
	})
	if err != nil {
		t.Fatalf("updating under own key must not conflict: %v", err)
	}
	if q.Name != "Entrance Hall" {
		t.Errorf("name not updated: %q", q.Name)
	}
}

func TestUpsertQuestionnaireUpdateNotFound(t *testing.T) {
	svc := newTestQuestionnaireService(newFakeQuestionnaireStore())

	_, err := svc.Upsert(context.Background(), &model.UpsertQuestionnaireRequest{
		ID: 42, QuestionnaireKey: "x", Name: "X",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsertQuestionnaireCreateDefaultsActive(t *testing.T) {
	store := newFakeQuestionnaireStore()
	svc := newTestQuestionnaireService(store)

	q, err := svc.Upsert(context.Background(), &model.UpsertQuestionnaireRequest{
		QuestionnaireKey: "garden", Name: "Garden",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsActive {
		t.Error("new questionnaires must default to active")
	}
	if q.ID == 0 {
		t.Error("expected assigned id")
	}
}

func TestDeleteQuestionnaire(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "default", Name: "Standard", IsDefault: true},
		&model.Questionnaire{ID: 2, Key: "entrance", Name: "Entrance"},
	)
	svc := newTestQuestionnaireService(store)
	ctx := context.Background()

	if err := svc.Delete(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, 1); !errors.Is(err, ErrDefaultQuestionnaire) {
		t.Errorf("expected default protection, got %v", err)
	}
	if err := svc.Delete(ctx, 2); err != nil {
		t.Errorf("expected delete to succeed, got %v", err)
	}
	if _, ok := store.byID[2]; ok {
		t.Error("questionnaire not removed")
	}
}

func TestSaveSlotsNotFound(t *testing.T) {
	svc := newTestQuestionnaireService(newFakeQuestionnaireStore())

	_, err := svc.SaveSlots(context.Background(), 7, &model.SaveSlotsRequest{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveSlotsAppliesDefaults(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "default", Name: "Standard"},
	)
	svc := newTestQuestionnaireService(store)

	_, err := svc.SaveSlots(context.Background(), 1, &model.SaveSlotsRequest{
		Slots: []model.SlotInput{
			{Questions: []string{"mood"}},
			{Mode: "pool", PoolCount: 2, Sort: 50, Questions: []string{"a", "b", "c"}},
			{Mode: "fixed"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.replacedID != 1 || len(store.replaced) != 3 {
		t.Fatalf("slots not replaced: id=%d n=%d", store.replacedID, len(store.replaced))
	}

	first := store.replaced[0]
	if first.Mode != "fixed" || first.PoolCount != 1 || first.Sort != 10 {
		t.Errorf("defaults not applied: %#v", first)
	}
	second := store.replaced[1]
	if second.Sort != 50 || second.PoolCount != 2 {
		t.Errorf("explicit values overridden: %#v", second)
	}
	third := store.replaced[2]
	if third.Sort != 30 || third.Questions == nil || len(third.Questions) != 0 {
		t.Errorf("expected positional sort and empty question list: %#v", third)
	}
}

func TestSaveSlotsRejectsUnknownMode(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "default", Name: "Standard"},
	)
	svc := newTestQuestionnaireService(store)

	_, err := svc.SaveSlots(context.Background(), 1, &model.SaveSlotsRequest{
		Slots: []model.SlotInput{{Mode: "random"}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveSlotsRejectsBlankQuestionKey(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "default", Name: "Standard"},
	)
	svc := newTestQuestionnaireService(store)

	_, err := svc.SaveSlots(context.Background(), 1, &model.SaveSlotsRequest{
		Slots: []model.SlotInput{{Questions: []string{"mood", "  "}}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveSlotsRejectsUnknownCatalogKey(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "default", Name: "Standard"},
	)
	svc := NewQuestionnaireService(store, newFakeSlotCatalog("mood"), zerolog.Nop())

	_, err := svc.SaveSlots(context.Background(), 1, &model.SaveSlotsRequest{
		Slots: []model.SlotInput{{Questions: []string{"mood", "ghost"}}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := ValidationFields(err)
	if _, ok := fields["slots[0].questions[1]"]; !ok {
		t.Errorf("expected the unknown key named by position, got %v", fields)
	}
	if store.replaced != nil {
		t.Error("slots must not be written when a key is unknown")
	}
}

func TestSaveSlotsMapsAssignmentFKViolation(t *testing.T) {
	store := newFakeQuestionnaireStore(
		&model.Questionnaire{ID: 1, Key: "default", Name: "Standard"},
	)
	store.replaceErr = &pgconn.PgError{Code: "23503"}
	svc := newTestQuestionnaireService(store)

	_, err := svc.SaveSlots(context.Background(), 1, &model.SaveSlotsRequest{
		Slots: []model.SlotInput{{Questions: []string{"mood"}}},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for FK violation, got %v", err)
	}
}
