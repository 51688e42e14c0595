// Package api provides the HTTP API server for DiagramDesigner.
// It uses the Echo framework to serve the REST endpoints under /api/v1
// and maps service errors onto JSON error bodies in one place.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/schalkje/DiagramDesigner/docs" // registers the OpenAPI document
	"github.com/schalkje/DiagramDesigner/internal/auth"
	"github.com/schalkje/DiagramDesigner/internal/config"
	"github.com/schalkje/DiagramDesigner/internal/service"
	"github.com/schalkje/DiagramDesigner/internal/storage"
	"github.com/schalkje/DiagramDesigner/internal/validation"
	"github.com/schalkje/DiagramDesigner/internal/version"
)

// Server represents the DiagramDesigner API server.
type Server struct {
	echo       *echo.Echo
	storage    *storage.Storage
	services   *service.Services
	config     *config.Config
	authMiddle *auth.Middleware
	log        zerolog.Logger
}

// New creates a new API server instance. The store, services and token
// service are built once by the caller and shared by every request.
func New(cfg *config.Config, store *storage.Storage, svc *service.Services, jwt *auth.JWTService, log zerolog.Logger) *Server {
	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.Validator = validation.New()

	// Set custom error handler
	e.HTTPErrorHandler = HTTPErrorHandler

	server := &Server{
		echo:       e,
		storage:    store,
		services:   svc,
		config:     cfg,
		authMiddle: auth.NewMiddleware(jwt, store),
		log:        log.With().Str("component", "api").Logger(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestID())
	s.echo.Use(RequestLogger(s.log))
	s.echo.Use(middleware.Recover())
	s.echo.Use(SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.Security.RateLimit),
				Burst:     s.config.Security.RateLimit * 2,
				ExpiresIn: 3 * time.Minute,
			}),
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client").SetInternal(err)
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			},
		}))
	}

	s.echo.Use(ValidateContentType)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := s.echo.Group("/api/v1")
	requireAuth := s.authMiddle.RequireAuth

	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", s.register)
	authRoutes.POST("/login", s.login)
	authRoutes.GET("/me", s.me, requireAuth)

	superdomains := v1.Group("/superdomains", requireAuth)
	superdomains.GET("", s.listSuperdomains)
	superdomains.POST("", s.createSuperdomain)
	superdomains.GET("/:id", s.getSuperdomain)
	superdomains.PUT("/:id", s.updateSuperdomain)
	superdomains.DELETE("/:id", s.deleteSuperdomain)
	superdomains.GET("/:id/impact", s.superdomainImpact)

	domains := v1.Group("/domains", requireAuth)
	domains.GET("", s.listDomains)
	domains.POST("", s.createDomain)
	domains.GET("/:id", s.getDomain)
	domains.PUT("/:id", s.updateDomain)
	domains.DELETE("/:id", s.deleteDomain)

	entities := v1.Group("/entities", requireAuth)
	entities.GET("", s.listEntities)
	entities.POST("", s.createEntity)
	entities.GET("/:id", s.getEntity)
	entities.PUT("/:id", s.updateEntity)
	entities.DELETE("/:id", s.deleteEntity)
	entities.GET("/:id/attributes", s.listEntityAttributes)
	entities.POST("/:id/attributes", s.createEntityAttribute)
	entities.GET("/:id/relationships", s.listEntityRelationships)

	attributes := v1.Group("/attributes", requireAuth)
	attributes.GET("", s.listAttributes)
	attributes.POST("", s.createAttribute)
	attributes.GET("/:id", s.getAttribute)
	attributes.PUT("/:id", s.updateAttribute)
	attributes.DELETE("/:id", s.deleteAttribute)

	relationships := v1.Group("/relationships", requireAuth)
	relationships.GET("", s.listRelationships)
	relationships.POST("", s.createRelationship)
	relationships.GET("/:id", s.getRelationship)
	relationships.PUT("/:id", s.updateRelationship)
	relationships.DELETE("/:id", s.deleteRelationship)

	diagrams := v1.Group("/diagrams", requireAuth)
	diagrams.GET("", s.listDiagrams)
	diagrams.POST("", s.createDiagram)
	diagrams.GET("/containing/:objectType/:objectId", s.diagramsContaining)
	diagrams.GET("/:id", s.getDiagram)
	diagrams.PUT("/:id", s.updateDiagram)
	diagrams.DELETE("/:id", s.deleteDiagram)
	diagrams.POST("/:id/objects", s.addDiagramObject)
	diagrams.PUT("/:id/objects/:objectId", s.updateDiagramObject)
	diagrams.DELETE("/:id/objects/:objectId", s.removeDiagramObject)
	diagrams.POST("/:id/relationships", s.addDiagramRelationship)
	diagrams.PUT("/:id/relationships/:relationshipId", s.updateDiagramRelationship)
	diagrams.DELETE("/:id/relationships/:relationshipId", s.removeDiagramRelationship)
}

// ServeHTTP lets the server be driven directly, e.g. by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server and blocks until it stops. A graceful
// shutdown is not reported as an error.
func (s *Server) Start() error {
	addr := s.config.Server.Address()

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	s.log.Info().
		Str("address", addr).
		Str("database", s.storage.Dialect()).
		Bool("debug", s.config.Server.Debug).
		Str("version", version.Version).
		Msg("starting DiagramDesigner API server")

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down DiagramDesigner API server")

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if err := s.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}

	s.log.Info().Msg("server shutdown complete")
	return nil
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// healthCheck handles GET /health
// @Summary Health check
// @Description Reports whether the server can reach its database
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (s *Server) healthCheck(c echo.Context) error {
	resp := HealthResponse{
		Status:   "healthy",
		Service:  "diagramdesigner",
		Version:  version.Version,
		Database: s.storage.Dialect(),
	}
	if err := s.storage.Ping(c.Request().Context()); err != nil {
		logger(c).Warn().Err(err).Msg("health check failed")
		resp.Status = "unhealthy"
		resp.Error = "database connection failed"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// currentUserID returns the authenticated user's id for audit columns.
func currentUserID(c echo.Context) *uint {
	id, ok := auth.GetUserID(c)
	if !ok {
		return nil
	}
	return &id
}

// bind decodes the request body into v.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return BadRequestError("Invalid request body", fmt.Sprint(he.Message))
		}
		return BadRequestError("Invalid request body", err.Error())
	}
	return nil
}
