package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/model"
)

type auditStore interface {
	Insert(ctx context.Context, e *model.AuditEntry) error
	List(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// AuditService records admin actions. Recording is fire and forget; a
// failed write is logged and never surfaces to the admin request.
type AuditService struct {
	store auditStore
	log   zerolog.Logger
}

func NewAuditService(store auditStore, log zerolog.Logger) *AuditService {
	return &AuditService{
		store: store,
		log:   log.With().Str("component", "audit_service").Logger(),
	}
}

// Record writes one audit entry in the background. The payload is marshaled
// best effort; an unmarshalable payload is stored as null.
func (s *AuditService) Record(adminID int, action, target string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			raw = encoded
		}
	}
	entry := &model.AuditEntry{
		UserID:  &adminID,
		Action:  action,
		Target:  target,
		Payload: raw,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.Insert(ctx, entry); err != nil {
			s.log.Warn().Err(err).Str("action", action).Str("target", target).Msg("failed to record audit entry")
		}
	}()
}

func (s *AuditService) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.List(ctx, limit)
}
