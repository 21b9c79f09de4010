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

// QuestionHandler exposes the question catalog.
type QuestionHandler struct {
	questions *service.QuestionService
	audit     *service.AuditService
	log       zerolog.Logger
}

func NewQuestionHandler(questions *service.QuestionService, audit *service.AuditService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questions: questions,
		audit:     audit,
		log:       log.With().Str("component", "question_handler").Logger(),
	}
}

// PublicCatalog handles GET /public/questions. The lang query parameter
// defaults to the fallback language.
func (h *QuestionHandler) PublicCatalog(c *gin.Context) {
	items, err := h.questions.PublicCatalog(c.Request.Context(), c.Query("lang"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// List handles GET /admin/questions.
func (h *QuestionHandler) List(c *gin.Context) {
	items, err := h.questions.List(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Get handles GET /admin/questions/:key.
func (h *QuestionHandler) Get(c *gin.Context) {
	q, options, err := h.questions.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q, "options": options})
}

// Upsert handles POST /admin/questions.
func (h *QuestionHandler) Upsert(c *gin.Context) {
	var req model.UpsertQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questions.Upsert(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "question.upsert", q.Key, req)
	}
	response.Success(c, http.StatusOK, q)
}

// Delete handles DELETE /admin/questions/:key.
func (h *QuestionHandler) Delete(c *gin.Context) {
	key := c.Param("key")
	if err := h.questions.Delete(c.Request.Context(), key); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "question.delete", key, nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// UpsertOption handles POST /admin/questions/:key/options.
func (h *QuestionHandler) UpsertOption(c *gin.Context) {
	var req model.UpsertOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	req.QuestionKey = c.Param("key")

	o, err := h.questions.UpsertOption(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "question.option.upsert", req.QuestionKey+"/"+o.OptionKey, req)
	}
	response.Success(c, http.StatusOK, o)
}

// DeleteOption handles DELETE /admin/questions/:key/options/:option.
func (h *QuestionHandler) DeleteOption(c *gin.Context) {
	key, option := c.Param("key"), c.Param("option")
	if err := h.questions.DeleteOption(c.Request.Context(), key, option); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "question.option.delete", key+"/"+option, nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
