package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/response"
	"github.com/feelmap/feelmap-backend/internal/service"
)

// AuditHandler exposes the admin action log.
type AuditHandler struct {
	audit *service.AuditService
	log   zerolog.Logger
}

func NewAuditHandler(audit *service.AuditService, log zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		audit: audit,
		log:   log.With().Str("component", "audit_handler").Logger(),
	}
}

// List handles GET /admin/audit.
func (h *AuditHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	items, err := h.audit.List(c.Request.Context(), limit)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}
