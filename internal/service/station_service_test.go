package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type fakeStationStore struct {
	byID   map[int]*model.Station
	nextID int
}

func newFakeStationStore(items ...*model.Station) *fakeStationStore {
	f := &fakeStationStore{byID: map[int]*model.Station{}, nextID: 1}
	for _, s := range items {
		f.byID[s.ID] = s
		if s.ID >= f.nextID {
			f.nextID = s.ID + 1
		}
	}
	return f
}

func (f *fakeStationStore) List(_ context.Context) ([]model.Station, error) { return nil, nil }

func (f *fakeStationStore) GetByID(_ context.Context, id int) (*model.Station, error) {
	if s, ok := f.byID[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStationStore) GetByKey(_ context.Context, key string) (*model.Station, error) {
	for _, s := range f.byID {
		if s.Key == key {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStationStore) KeyExists(_ context.Context, key string, excludeID int) (bool, error) {
	for _, s := range f.byID {
		if s.Key == key && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStationStore) Insert(_ context.Context, s *model.Station) (int, error) {
	id := f.nextID
	f.nextID++
	stored := *s
	stored.ID = id
	f.byID[id] = &stored
	return id, nil
}

func (f *fakeStationStore) Update(_ context.Context, s *model.Station) error {
	stored := *s
	f.byID[s.ID] = &stored
	return nil
}

func (f *fakeStationStore) Delete(_ context.Context, id int) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	return true, nil
}

func newTestStationService(store *fakeStationStore, questionnaires *fakeQuestionnaireStore) *StationService {
	if questionnaires == nil {
		questionnaires = newFakeQuestionnaireStore()
	}
	return NewStationService(store, questionnaires, zerolog.Nop())
}

func TestPublicLookupUnknownOrInactive(t *testing.T) {
	store := newFakeStationStore(
		&model.Station{ID: 1, Key: "off", Name: "Off", IsActive: false},
	)
	svc := newTestStationService(store, nil)
	ctx := context.Background()

	if _, err := svc.PublicLookup(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for unknown station, got %v", err)
	}
	// Inactive stations look exactly like missing ones.
	if _, err := svc.PublicLookup(ctx, "off"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found for inactive station, got %v", err)
	}
}

func TestPublicLookupDefaultQuestionnaireFallback(t *testing.T) {
	store := newFakeStationStore(
		&model.Station{ID: 1, Key: "lobby", Name: "Lobby", IsActive: true},
		&model.Station{ID: 2, Key: "lab", Name: "Lab", IsActive: true, QuestionnaireKey: "lab-survey"},
	)
	svc := newTestStationService(store, nil)
	ctx := context.Background()

	unassigned, err := svc.PublicLookup(ctx, "lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unassigned.QuestionnaireKey != DefaultQuestionnaireKey {
		t.Errorf("expected default questionnaire fallback, got %q", unassigned.QuestionnaireKey)
	}

	assigned, err := svc.PublicLookup(ctx, "lab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assigned.QuestionnaireKey != "lab-survey" {
		t.Errorf("expected assigned questionnaire, got %q", assigned.QuestionnaireKey)
	}
}

func TestUpsertStationKeyConflict(t *testing.T) {
	store := newFakeStationStore(
		&model.Station{ID: 1, Key: "lobby", Name: "Lobby", IsActive: true},
	)
	svc := newTestStationService(store, nil)

	_, err := svc.Upsert(context.Background(), &model.UpsertStationRequest{StationKey: "lobby", Name: "Other"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpsertStationUnknownQuestionnaire(t *testing.T) {
	svc := newTestStationService(newFakeStationStore(), newFakeQuestionnaireStore())
	qid := 9

	_, err := svc.Upsert(context.Background(), &model.UpsertStationRequest{
		StationKey: "lobby", Name: "Lobby", QuestionnaireID: &qid,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
