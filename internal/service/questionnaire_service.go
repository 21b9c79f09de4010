package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type questionnaireStore interface {
	List(ctx context.Context) ([]model.Questionnaire, error)
	GetByID(ctx context.Context, id int) (*model.Questionnaire, error)
	GetByKey(ctx context.Context, key string) (*model.Questionnaire, error)
	KeyExists(ctx context.Context, key string, excludeID int) (bool, error)
	Insert(ctx context.Context, q *model.Questionnaire) (int, error)
	Update(ctx context.Context, q *model.Questionnaire) error
	Delete(ctx context.Context, id int) error
	ListSlots(ctx context.Context, questionnaireID int) ([]model.Slot, error)
	ReplaceSlots(ctx context.Context, questionnaireID int, slots []model.SlotInput) error
}

type slotCatalogStore interface {
	ListByKeys(ctx context.Context, keys []string) ([]model.Question, error)
}

// QuestionnaireService manages questionnaire records and their slot
// configuration.
type QuestionnaireService struct {
	store   questionnaireStore
	catalog slotCatalogStore
	log     zerolog.Logger
}

func NewQuestionnaireService(store questionnaireStore, catalog slotCatalogStore, log zerolog.Logger) *QuestionnaireService {
	return &QuestionnaireService{
		store:   store,
		catalog: catalog,
		log:     log.With().Str("component", "questionnaire_service").Logger(),
	}
}

func (s *QuestionnaireService) List(ctx context.Context) ([]model.Questionnaire, error) {
	return s.store.List(ctx)
}

// Get returns one questionnaire with its slots.
func (s *QuestionnaireService) Get(ctx context.Context, id int) (*model.Questionnaire, []model.Slot, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, fmt.Errorf("questionnaire %d: %w", id, ErrNotFound)
	}
	slots, err := s.store.ListSlots(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return q, slots, nil
}

// Upsert creates a questionnaire, or updates the one named by req.ID.
func (s *QuestionnaireService) Upsert(ctx context.Context, req *model.UpsertQuestionnaireRequest) (*model.Questionnaire, error) {
	key := strings.TrimSpace(req.QuestionnaireKey)
	name := strings.TrimSpace(req.Name)

	fields := map[string]string{}
	if key == "" {
		fields["questionnaire_key"] = "questionnaire key must not be empty"
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
		return nil, fmt.Errorf("questionnaire key %q already in use: %w", key, ErrConflict)
	}

	if req.ID > 0 {
		existing, err := s.store.GetByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("questionnaire %d: %w", req.ID, ErrNotFound)
		}
		existing.Key = key
		existing.Name = name
		existing.Description = req.Description
		if req.IsActive != nil {
			existing.IsActive = *req.IsActive
		}
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.log.Info().Int("id", existing.ID).Str("key", key).Msg("questionnaire updated")
		return existing, nil
	}

	q := &model.Questionnaire{
		Key:         key,
		Name:        name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
	id, err := s.store.Insert(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = id
	s.log.Info().Int("id", id).Str("key", key).Msg("questionnaire created")
	return q, nil
}

// Delete removes a questionnaire. The default questionnaire cannot be
// deleted; it is the safety net every unassigned station falls back to.
func (s *QuestionnaireService) Delete(ctx context.Context, id int) error {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q == nil {
		return fmt.Errorf("questionnaire %d: %w", id, ErrNotFound)
	}
	if q.IsDefault {
		return fmt.Errorf("questionnaire %d: %w", id, ErrDefaultQuestionnaire)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("id", id).Str("key", q.Key).Msg("questionnaire deleted")
	return nil
}

// SaveSlots replaces the full slot configuration of a questionnaire in one
// transaction. Slot defaults: mode fixed, pool count 1, not required, empty
// question list; a zero sort takes the slot's position in the request. Every
// assigned question key must exist in the catalog.
func (s *QuestionnaireService) SaveSlots(ctx context.Context, id int, req *model.SaveSlotsRequest) ([]model.Slot, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("questionnaire %d: %w", id, ErrNotFound)
	}

	slots := make([]model.SlotInput, len(req.Slots))
	for i, in := range req.Slots {
		slot := in
		if slot.Mode == "" {
			slot.Mode = string(model.SlotModeFixed)
		}
		if slot.Mode != string(model.SlotModeFixed) && slot.Mode != string(model.SlotModePool) {
			return nil, NewValidationError(map[string]string{
				fmt.Sprintf("slots[%d].mode", i): "mode must be fixed or pool",
			})
		}
		if slot.PoolCount < 1 {
			slot.PoolCount = 1
		}
		if slot.Sort == 0 {
			slot.Sort = (i + 1) * 10
		}
		if slot.Questions == nil {
			slot.Questions = []string{}
		}
		for j, key := range slot.Questions {
			if strings.TrimSpace(key) == "" {
				return nil, NewValidationError(map[string]string{
					fmt.Sprintf("slots[%d].questions[%d]", i, j): "question key must not be empty",
				})
			}
		}
		slots[i] = slot
	}

	if err := s.checkSlotQuestions(ctx, slots); err != nil {
		return nil, err
	}

	if err := s.store.ReplaceSlots(ctx, id, slots); err != nil {
		// A question deleted between the check and the write trips the
		// assignment FK. 23503: foreign_key_violation.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, NewValidationError(map[string]string{
				"slots": "slot references an unknown question key",
			})
		}
		return nil, err
	}
	s.log.Info().Int("id", id).Int("slots", len(slots)).Msg("questionnaire slots replaced")
	return s.store.ListSlots(ctx, id)
}

// checkSlotQuestions verifies every assigned question key exists in the
// catalog, naming each unknown key by its slot position.
func (s *QuestionnaireService) checkSlotQuestions(ctx context.Context, slots []model.SlotInput) error {
	var keys []string
	seen := make(map[string]struct{})
	for _, slot := range slots {
		for _, key := range slot.Questions {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	questions, err := s.catalog.ListByKeys(ctx, keys)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		known[q.Key] = struct{}{}
	}

	fields := map[string]string{}
	for i, slot := range slots {
		for j, key := range slot.Questions {
			if _, ok := known[key]; !ok {
				fields[fmt.Sprintf("slots[%d].questions[%d]", i, j)] = fmt.Sprintf("unknown question key %q", key)
			}
		}
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}
