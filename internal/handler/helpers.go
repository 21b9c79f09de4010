package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/response"
	"github.com/feelmap/feelmap-backend/internal/service"
)

// failFromService maps a service error onto the HTTP error envelope.
// Anything outside the service taxonomy is logged and reported as internal.
func failFromService(c *gin.Context, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrDefaultQuestionnaire):
		response.Fail(c, http.StatusConflict, response.ErrDefaultQuestionnaire)
	case errors.Is(err, service.ErrLanguageIncomplete):
		response.Fail(c, http.StatusConflict, response.ErrLanguageIncomplete)
	case errors.Is(err, service.ErrConflict):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrValidation):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, service.ValidationFields(err))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// pathID parses the :id path parameter. On failure it writes the error
// response and reports false.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
