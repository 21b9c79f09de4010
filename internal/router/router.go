package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/feelmap/feelmap-backend/internal/config"
	"github.com/feelmap/feelmap-backend/internal/handler"
	"github.com/feelmap/feelmap-backend/internal/middleware"
	"github.com/feelmap/feelmap-backend/internal/response"
	"github.com/feelmap/feelmap-backend/internal/service"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth           *handler.AuthHandler
	Questionnaires *handler.QuestionnaireHandler
	Questions      *handler.QuestionHandler
	Translations   *handler.TranslationHandler
	Languages      *handler.LanguageHandler
	Content        *handler.ContentHandler
	Stations       *handler.StationHandler
	Pins           *handler.PinHandler
	Audit          *handler.AuditHandler
	WS             *handler.WSHandler
}

// Setup builds the Gin engine with all middleware and routes mounted.
func Setup(cfg *config.Config, auth *service.AuthService, h Handlers, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(response.RequestIDMiddleware())
	r.Use(requestLogger(log))
	r.Use(middleware.Brotli())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	public := v1.Group("/public")
	{
		public.GET("/questionnaires/:key", h.Questionnaires.Resolve)
		public.GET("/questions", h.Questions.PublicCatalog)
		public.GET("/translations/:lang", h.Translations.PublicMap)
		public.GET("/languages", h.Languages.ListEnabled)
		public.GET("/content/:page", h.Content.PublicGet)
		public.GET("/stations/:key", h.Stations.PublicLookup)
		public.GET("/pins", h.Pins.ListApproved)
		public.POST("/pins", h.Pins.Create)
	}

	v1.POST("/auth/login", h.Auth.Login)

	admin := v1.Group("/admin", middleware.RequireAdmin(auth))
	{
		admin.POST("/auth/logout", h.Auth.Logout)
		admin.GET("/auth/me", h.Auth.Me)
		admin.GET("/users", h.Auth.ListUsers)

		admin.GET("/questionnaires", h.Questionnaires.List)
		admin.GET("/questionnaires/:id", h.Questionnaires.Get)
		admin.POST("/questionnaires", h.Questionnaires.Upsert)
		admin.DELETE("/questionnaires/:id", h.Questionnaires.Delete)
		admin.PUT("/questionnaires/:id/slots", h.Questionnaires.SaveSlots)

		admin.GET("/questions", h.Questions.List)
		admin.GET("/questions/:key", h.Questions.Get)
		admin.POST("/questions", h.Questions.Upsert)
		admin.DELETE("/questions/:key", h.Questions.Delete)
		admin.POST("/questions/:key/options", h.Questions.UpsertOption)
		admin.DELETE("/questions/:key/options/:option", h.Questions.DeleteOption)

		admin.GET("/translations/:lang", h.Translations.List)
		admin.POST("/translations", h.Translations.Upsert)
		admin.DELETE("/translations/:lang/:key", h.Translations.Delete)

		admin.GET("/languages", h.Languages.List)
		admin.GET("/languages/:lang/missing", h.Languages.Missing)
		admin.POST("/languages", h.Languages.Upsert)
		admin.PUT("/languages/:lang/enabled", h.Languages.SetEnabled)
		admin.DELETE("/languages/:lang", h.Languages.Delete)

		admin.GET("/content", h.Content.List)
		admin.POST("/content", h.Content.Upsert)
		admin.DELETE("/content/:page/:lang", h.Content.Delete)

		admin.GET("/stations", h.Stations.List)
		admin.POST("/stations", h.Stations.Upsert)
		admin.DELETE("/stations/:id", h.Stations.Delete)

		admin.GET("/pins", h.Pins.ListAll)
		admin.PUT("/pins/:id/approved", h.Pins.SetApproved)
		admin.DELETE("/pins/:id", h.Pins.Delete)

		admin.GET("/audit", h.Audit.List)
	}

	// WebSocket upgrades cannot carry an Authorization header.
	v1.GET("/admin/ws/pins", middleware.RequireAdminWS(auth), h.WS.PinFeed)

	return r
}

// requestLogger emits one structured line per request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
