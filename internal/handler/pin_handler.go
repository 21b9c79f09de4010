package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/middleware"
	"github.com/feelmap/feelmap-backend/internal/model"
	"github.com/feelmap/feelmap-backend/internal/response"
	"github.com/feelmap/feelmap-backend/internal/service"
	"github.com/feelmap/feelmap-backend/internal/validator"
)

// PinHandler exposes public pin submission and admin moderation.
type PinHandler struct {
	pins  *service.PinService
	audit *service.AuditService
	log   zerolog.Logger
}

func NewPinHandler(pins *service.PinService, audit *service.AuditService, log zerolog.Logger) *PinHandler {
	return &PinHandler{
		pins:  pins,
		audit: audit,
		log:   log.With().Str("component", "pin_handler").Logger(),
	}
}

// Create handles POST /public/pins.
func (h *PinHandler) Create(c *gin.Context) {
	var req model.CreatePinRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pin, err := h.pins.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, pin)
}

// ListApproved handles GET /public/pins.
func (h *PinHandler) ListApproved(c *gin.Context) {
	items, err := h.pins.ListApproved(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// ListAll handles GET /admin/pins.
func (h *PinHandler) ListAll(c *gin.Context) {
	items, err := h.pins.ListAll(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// SetApproved handles PUT /admin/pins/:id/approved.
func (h *PinHandler) SetApproved(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.pins.SetApproved(c.Request.Context(), id, *req.Approved); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "pin.moderate", c.Param("id"), req)
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "approved": *req.Approved})
}

// Delete handles DELETE /admin/pins/:id.
func (h *PinHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.pins.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "pin.delete", c.Param("id"), nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
