package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/middleware"
	"github.com/feelmap/feelmap-backend/internal/model"
	"github.com/feelmap/feelmap-backend/internal/response"
	"github.com/feelmap/feelmap-backend/internal/service"
	"github.com/feelmap/feelmap-backend/internal/validator"
)

// AuthHandler exposes admin login and session management.
type AuthHandler struct {
	auth  *service.AuthService
	audit *service.AuditService
	log   zerolog.Logger
}

func NewAuthHandler(auth *service.AuthService, audit *service.AuditService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		audit: audit,
		log:   log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, admin, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		failFromService(c, h.log, err)
		return
	}

	h.audit.Record(admin.ID, "auth.login", admin.Email, nil)
	response.Success(c, http.StatusOK, gin.H{"token": token, "admin": admin})
}

// Logout handles POST /admin/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims.AdminID); err != nil {
		failFromService(c, h.log, err)
		return
	}
	h.audit.Record(claims.AdminID, "auth.logout", claims.Email, nil)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// ListUsers handles GET /admin/users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	admins, err := h.auth.ListAdmins(c.Request.Context())
	if err != nil {
		failFromService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, admins)
}

// Me handles GET /admin/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admin_id": claims.AdminID, "email": claims.Email})
}
