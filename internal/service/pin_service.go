package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/config"
	"github.com/feelmap/feelmap-backend/internal/model"
)

// Question keys whose active options define the accepted pin reason and
// group values.
const (
	reasonsQuestionKey = "reasons"
	groupQuestionKey   = "group"
)

type pinStore interface {
	Insert(ctx context.Context, pin *model.Pin) error
	GetByID(ctx context.Context, id int) (*model.Pin, error)
	ListApproved(ctx context.Context, limit int) ([]model.Pin, error)
	ListAll(ctx context.Context, limit int) ([]model.Pin, error)
	SetApproved(ctx context.Context, id int, approved bool) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type pinOptionStore interface {
	ListActiveOptionsByKeys(ctx context.Context, questionKeys []string) ([]model.QuestionOption, error)
}

// PinService accepts public wellbeing submissions, moderates them, and
// announces new pins on the Redis feed channel for the admin live view.
type PinService struct {
	store   pinStore
	options pinOptionStore
	rdb     *redis.Client
	listCap int
	log     zerolog.Logger
}

func NewPinService(store pinStore, options pinOptionStore, rdb *redis.Client, log zerolog.Logger) *PinService {
	return &PinService{
		store:   store,
		options: options,
		rdb:     rdb,
		listCap: 2000,
		log:     log.With().Str("component", "pin_service").Logger(),
	}
}

// Create validates and stores a public submission. Wellbeing arrives as a
// percent value and is clamped and rounded server-side; reasons and group
// must match active options of their catalog questions.
func (s *PinService) Create(ctx context.Context, req *model.CreatePinRequest) (*model.Pin, error) {
	allowed, err := s.options.ListActiveOptionsByKeys(ctx, []string{reasonsQuestionKey, groupQuestionKey})
	if err != nil {
		return nil, err
	}
	reasonSet := make(map[string]struct{})
	groupSet := make(map[string]struct{})
	for _, o := range allowed {
		switch o.QuestionKey {
		case reasonsQuestionKey:
			reasonSet[o.OptionKey] = struct{}{}
		case groupQuestionKey:
			groupSet[o.OptionKey] = struct{}{}
		}
	}

	reasons := make([]string, 0, len(req.Reasons))
	seen := make(map[string]struct{}, len(req.Reasons))
	for _, reason := range req.Reasons {
		if _, ok := reasonSet[reason]; !ok {
			return nil, NewValidationError(map[string]string{"reasons": fmt.Sprintf("unknown reason %q", reason)})
		}
		if _, dup := seen[reason]; dup {
			continue
		}
		seen[reason] = struct{}{}
		reasons = append(reasons, reason)
	}

	var group *string
	if req.Group != "" {
		if _, ok := groupSet[req.Group]; !ok {
			return nil, NewValidationError(map[string]string{"group": fmt.Sprintf("unknown group %q", req.Group)})
		}
		g := req.Group
		group = &g
	}

	pin := &model.Pin{
		FloorIndex: *req.FloorIndex,
		Position:   model.Vec3{X: *req.X, Y: *req.Y, Z: *req.Z},
		Wellbeing:  NormalizePercent(*req.Wellbeing),
		Note:       req.Note,
		GroupKey:   group,
		Reasons:    reasons,
		Approved:   true,
	}
	if err := s.store.Insert(ctx, pin); err != nil {
		return nil, err
	}
	s.log.Info().Int("id", pin.ID).Int("floor", pin.FloorIndex).Msg("pin created")

	s.publish(ctx, pin)
	return pin, nil
}

// publish announces a new pin on the feed channel. Delivery is best effort;
// a Redis failure never fails the submission.
func (s *PinService) publish(ctx context.Context, pin *model.Pin) {
	payload, err := json.Marshal(pin)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.PinFeedChannel(), payload).Err(); err != nil {
		s.log.Warn().Err(err).Int("id", pin.ID).Msg("failed to publish pin to feed")
	}
}

// ListApproved returns the approved pins for the public map.
func (s *PinService) ListApproved(ctx context.Context) ([]model.Pin, error) {
	return s.store.ListApproved(ctx, s.listCap)
}

// ListAll returns every pin for the moderation view.
func (s *PinService) ListAll(ctx context.Context) ([]model.Pin, error) {
	return s.store.ListAll(ctx, s.listCap)
}

func (s *PinService) SetApproved(ctx context.Context, id int, approved bool) error {
	updated, err := s.store.SetApproved(ctx, id, approved)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("pin %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PinService) Delete(ctx context.Context, id int) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("pin %d: %w", id, ErrNotFound)
	}
	return nil
}

// NormalizePercent clamps a percent value into [0, 100] and rounds it to two
// decimal places.
func NormalizePercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return math.Round(v*100) / 100
}
