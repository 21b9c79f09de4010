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

// StationHandler exposes QR station administration and the public lookup.
type StationHandler struct {
	stations *service.StationService
	audit    *service.AuditService
	log      zerolog.Logger
}

func NewStationHandler(stations *service.StationService, audit *service.AuditService, log zerolog.Logger) *StationHandler {
	return &StationHandler{
		stations: stations,
		audit:    audit,
		log:      log.With().Str("component", "station_handler").Logger(),
	}
}

// PublicLookup handles GET /public/stations/:key, the QR code entry point.
func (h *StationHandler) PublicLookup(c *gin.Context) {
	st, err := h.stations.PublicLookup(c.Request.Context(), c.Param("key"))
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// List handles GET /admin/stations.
func (h *StationHandler) List(c *gin.Context) {
	items, err := h.stations.List(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// Upsert handles POST /admin/stations.
func (h *StationHandler) Upsert(c *gin.Context) {
	var req model.UpsertStationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	st, err := h.stations.Upsert(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "station.upsert", st.Key, req)
	}
	status := http.StatusOK
	if req.ID == 0 {
		status = http.StatusCreated
	}
	response.Success(c, status, st)
}

// Delete handles DELETE /admin/stations/:id.
func (h *StationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.stations.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, h.log, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		h.audit.Record(claims.AdminID, "station.delete", c.Param("id"), nil)
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
