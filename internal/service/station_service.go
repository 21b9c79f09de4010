package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

// DefaultQuestionnaireKey is the questionnaire served when a station has no
// explicit assignment.
const DefaultQuestionnaireKey = "default"

type stationStore interface {
	List(ctx context.Context) ([]model.Station, error)
	GetByID(ctx context.Context, id int) (*model.Station, error)
	GetByKey(ctx context.Context, key string) (*model.Station, error)
	KeyExists(ctx context.Context, key string, excludeID int) (bool, error)
	Insert(ctx context.Context, s *model.Station) (int, error)
	Update(ctx context.Context, s *model.Station) error
	Delete(ctx context.Context, id int) (bool, error)
}

type stationQuestionnaireStore interface {
	GetByID(ctx context.Context, id int) (*model.Questionnaire, error)
}

// StationService manages QR stations and the public station lookup.
type StationService struct {
	store          stationStore
	questionnaires stationQuestionnaireStore
	log            zerolog.Logger
}

func NewStationService(store stationStore, questionnaires stationQuestionnaireStore, log zerolog.Logger) *StationService {
	return &StationService{
		store:          store,
		questionnaires: questionnaires,
		log:            log.With().Str("component", "station_service").Logger(),
	}
}

func (s *StationService) List(ctx context.Context) ([]model.Station, error) {
	return s.store.List(ctx)
}

// PublicLookup resolves a scanned QR code. Unknown and inactive stations are
// both a plain not found. Stations without a questionnaire assignment get
// the default questionnaire key.
func (s *StationService) PublicLookup(ctx context.Context, key string) (*model.PublicStation, error) {
	st, err := s.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if st == nil || !st.IsActive {
		return nil, fmt.Errorf("station %q: %w", key, ErrNotFound)
	}

	questionnaireKey := st.QuestionnaireKey
	if questionnaireKey == "" {
		questionnaireKey = DefaultQuestionnaireKey
	}
	return &model.PublicStation{
		Key:              st.Key,
		Name:             st.Name,
		FloorIndex:       st.FloorIndex,
		Camera:           st.Camera,
		Target:           st.Target,
		QuestionnaireKey: questionnaireKey,
	}, nil
}

// Upsert creates a station, or updates the one named by req.ID.
func (s *StationService) Upsert(ctx context.Context, req *model.UpsertStationRequest) (*model.Station, error) {
	key := strings.TrimSpace(req.StationKey)
	name := strings.TrimSpace(req.Name)

	fields := map[string]string{}
	if key == "" {
		fields["station_key"] = "station key must not be empty"
	}
	if name == "" {
		fields["name"] = "name must not be empty"
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	taken, err := s.store.KeyExists(ctx, key, req.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("station key %q already in use: %w", key, ErrConflict)
	}

	if req.QuestionnaireID != nil {
		q, err := s.questionnaires.GetByID(ctx, *req.QuestionnaireID)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, NewValidationError(map[string]string{"questionnaire_id": "questionnaire does not exist"})
		}
	}

	if req.ID > 0 {
		existing, err := s.store.GetByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("station %d: %w", req.ID, ErrNotFound)
		}
		existing.Key = key
		existing.Name = name
		existing.Description = req.Description
		existing.FloorIndex = req.FloorIndex
		existing.Camera = req.Camera
		existing.Target = req.Target
		existing.QuestionnaireID = req.QuestionnaireID
		if req.IsActive != nil {
			existing.IsActive = *req.IsActive
		}
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, err
		}
		return s.store.GetByID(ctx, existing.ID)
	}

	st := &model.Station{
		Key:             key,
		Name:            name,
		Description:     req.Description,
		FloorIndex:      req.FloorIndex,
		Camera:          req.Camera,
		Target:          req.Target,
		QuestionnaireID: req.QuestionnaireID,
		IsActive:        true,
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}
	id, err := s.store.Insert(ctx, st)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("id", id).Str("key", key).Msg("station created")
	return s.store.GetByID(ctx, id)
}

func (s *StationService) Delete(ctx context.Context, id int) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("station %d: %w", id, ErrNotFound)
	}
	s.log.Info().Int("id", id).Msg("station deleted")
	return nil
}
