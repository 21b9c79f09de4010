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

// LanguageHandler exposes language administration and the enabled-language
// list the survey client builds its picker from.
type LanguageHandler struct {
	languages *service.LanguageService
	audit     *service.AuditService
	log       zerolog.Logger
}

func NewLanguageHandler(languages *service.LanguageService, audit *service.AuditService, log zerolog.Logger) *LanguageHandler {
	return &LanguageHandler{
		languages: languages,
		audit:     audit,
		log:       log.With().Str("component", "language_handler").Logger(),
	}
}

// ListEnabled handles GET /public/languages.
func (h *LanguageHandler) ListEnabled(c *gin.Context) {
	items, err := h.languages.ListEnabled(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// List handles GET /admin/languages.
func (h *LanguageHandler) List(c *gin.Context) {
	items, err := h.languages.List(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Missing handles GET /admin/languages/:lang/missing.
func (h *LanguageHandler) Missing(c *gin.Context) {
	missing, err := h.languages.Missing(c.Request.Context(), c.Param("lang"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, missing)
}

// Upsert handles POST /admin/languages.
func (h *LanguageHandler) Upsert(c *gin.Context) {
	var req model.UpsertLanguageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	l, err := h.languages.Upsert(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "language.upsert", l.Lang, req)
	}
	response.Success(c, http.StatusOK, l)
}

// SetEnabled handles PUT /admin/languages/:lang/enabled. Enabling an
// incomplete language fails and returns the missing items.
func (h *LanguageHandler) SetEnabled(c *gin.Context) {
	var req model.ToggleLanguageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lang := c.Param("lang")
	missing, err := h.languages.SetEnabled(c.Request.Context(), lang, *req.Enabled)
	if err != nil {
		if missing != nil {
			response.FailWithData(c, http.StatusConflict, response.ErrLanguageIncomplete, missing)
			return
		}
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "language.toggle", lang, req)
	}
	response.Success(c, http.StatusOK, gin.H{"lang": lang, "enabled": *req.Enabled})
}

// Delete handles DELETE /admin/languages/:lang.
func (h *LanguageHandler) Delete(c *gin.Context) {
	lang := c.Param("lang")
	if err := h.languages.Delete(c.Request.Context(), lang); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "language.delete", lang, nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
