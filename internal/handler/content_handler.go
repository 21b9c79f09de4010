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

// ContentHandler exposes static content pages.
type ContentHandler struct {
	content      *service.ContentService
	audit        *service.AuditService
	fallbackLang string
	log          zerolog.Logger
}

func NewContentHandler(content *service.ContentService, audit *service.AuditService, fallbackLang string, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		content:      content,
		audit:        audit,
		fallbackLang: fallbackLang,
		log:          log.With().Str("component", "content_handler").Logger(),
	}
}

// PublicGet handles GET /public/content/:page.
func (h *ContentHandler) PublicGet(c *gin.Context) {
	lang := c.DefaultQuery("lang", h.fallbackLang)
	p, err := h.content.PublicGet(c.Request.Context(), c.Param("page"), lang)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// List handles GET /admin/content.
func (h *ContentHandler) List(c *gin.Context) {
	items, err := h.content.List(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Upsert handles POST /admin/content.
func (h *ContentHandler) Upsert(c *gin.Context) {
	var req model.UpsertContentPageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.content.Upsert(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "content.upsert", p.Lang+"/"+p.PageKey, req)
	}
	response.Success(c, http.StatusOK, p)
}

// Delete handles DELETE /admin/content/:page/:lang.
func (h *ContentHandler) Delete(c *gin.Context) {
	page, lang := c.Param("page"), c.Param("lang")
	if err := h.content.Delete(c.Request.Context(), page, lang); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "content.delete", lang+"/"+page, nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
