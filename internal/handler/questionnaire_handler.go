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

// QuestionnaireHandler exposes questionnaire administration and the public
// resolve endpoint.
type QuestionnaireHandler struct {
	questionnaires *service.QuestionnaireService
	resolver       *service.ResolverService
	audit          *service.AuditService
	fallbackLang   string
	log            zerolog.Logger
}

func NewQuestionnaireHandler(
	questionnaires *service.QuestionnaireService,
	resolver *service.ResolverService,
	audit *service.AuditService,
	fallbackLang string,
	log zerolog.Logger,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		questionnaires: questionnaires,
		resolver:       resolver,
		audit:          audit,
		fallbackLang:   fallbackLang,
		log:            log.With().Str("component", "questionnaire_handler").Logger(),
	}
}

// Resolve handles GET /public/questionnaires/:key. The lang query parameter
// defaults to the fallback language.
func (h *QuestionnaireHandler) Resolve(c *gin.Context) {
	lang := c.DefaultQuery("lang", h.fallbackLang)
	questions, err := h.resolver.Resolve(c.Request.Context(), c.Param("key"), lang)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, questions)
}

// List handles GET /admin/questionnaires.
func (h *QuestionnaireHandler) List(c *gin.Context) {
	items, err := h.questionnaires.List(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Get handles GET /admin/questionnaires/:id.
func (h *QuestionnaireHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	q, slots, err := h.questionnaires.Get(c.Request.Context(), id)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questionnaire": q, "slots": slots})
}

// Upsert handles POST /admin/questionnaires.
func (h *QuestionnaireHandler) Upsert(c *gin.Context) {
	var req model.UpsertQuestionnaireRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionnaires.Upsert(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}

	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "questionnaire.upsert", q.Key, req)
	}
	status := http.StatusOK
	if req.ID == 0 {
		status = http.StatusCreated
	}
	response.Success(c, status, q)
}

// Delete handles DELETE /admin/questionnaires/:id.
func (h *QuestionnaireHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.questionnaires.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "questionnaire.delete", c.Param("id"), nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// SaveSlots handles PUT /admin/questionnaires/:id/slots, replacing the full
// slot configuration atomically.
func (h *QuestionnaireHandler) SaveSlots(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.SaveSlotsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	slots, err := h.questionnaires.SaveSlots(c.Request.Context(), id, &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "questionnaire.slots", c.Param("id"), req)
	}
	response.Success(c, http.StatusOK, slots)
}
