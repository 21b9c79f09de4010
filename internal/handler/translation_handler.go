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

// TranslationHandler exposes translation administration and the cached
// public text map.
type TranslationHandler struct {
	translations *service.TranslationService
	audit        *service.AuditService
	log          zerolog.Logger
}

func NewTranslationHandler(translations *service.TranslationService, audit *service.AuditService, log zerolog.Logger) *TranslationHandler {
	return &TranslationHandler{
		translations: translations,
		audit:        audit,
		log:          log.With().Str("component", "translation_handler").Logger(),
	}
}

// PublicMap handles GET /public/translations/:lang. An optional prefix query
// restricts the keys, e.g. prefix=questions.
func (h *TranslationHandler) PublicMap(c *gin.Context) {
	m, err := h.translations.PublicMap(c.Request.Context(), c.Param("lang"), c.Query("prefix"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, m)
}

// List handles GET /admin/translations/:lang.
func (h *TranslationHandler) List(c *gin.Context) {
	items, err := h.translations.ListByLang(c.Request.Context(), c.Param("lang"), c.Query("prefix"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Upsert handles POST /admin/translations.
func (h *TranslationHandler) Upsert(c *gin.Context) {
	var req model.UpsertTranslationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	t, err := h.translations.Upsert(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "translation.upsert", t.Lang+"/"+t.Key, req)
	}
	response.Success(c, http.StatusOK, t)
}

// Delete handles DELETE /admin/translations/:lang/:key.
func (h *TranslationHandler) Delete(c *gin.Context) {
	lang, key := c.Param("lang"), c.Param("key")
	if err := h.translations.Delete(c.Request.Context(), key, lang); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "translation.delete", lang+"/"+key, nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
