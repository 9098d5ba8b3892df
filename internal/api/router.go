package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/app"
	iauth "github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/handlers"
	"github.com/virtualstage/backlot/internal/middleware"
	"github.com/virtualstage/backlot/internal/monitoring"
	"github.com/virtualstage/backlot/internal/permissions"
	"github.com/virtualstage/backlot/internal/realtime"
	"github.com/virtualstage/backlot/internal/services"
	"github.com/virtualstage/backlot/internal/storage"
	"github.com/virtualstage/backlot/pkg/mail"
)

// Deps carries the optional collaborators a router can be built with. Nil
// fields degrade gracefully: a missing parser or media store turns the
// corresponding endpoints into configuration errors, a missing hub is
// replaced with a fresh one, and a missing health manager leaves /api/health
// as a plain liveness probe.
type Deps struct {
	RateStore middleware.RateStore
	Hub       *realtime.Hub
	Parser    services.StoryParser
	Media     *storage.MediaStore
	Health    *monitoring.HealthManager
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, sessions *iauth.SessionService, deps Deps) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	if deps.RateStore != nil {
		r.Use(middleware.RateLimitWithStore(deps.RateStore, 100, time.Minute))
	} else {
		r.Use(middleware.RateLimit(100, time.Minute))
	}

	hub := deps.Hub
	if hub == nil {
		hub = realtime.NewHub()
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, err
	}

	checker, err := permissions.NewChecker(db)
	if err != nil {
		return nil, err
	}

	registerHealthRoutes(r, cfg, deps.Health)

	// Protected routes
	requireAuth := middleware.Auth(jwt)
	api := r.Group("/api")
	api.Use(requireAuth)

	authHandler, err := handlers.NewAuthHandler(db, sessions, mailer)
	if err != nil {
		return nil, err
	}
	invitationHandler, err := handlers.NewInvitationHandler(db, mailer, hub, cfg.Server.BaseURL)
	if err != nil {
		return nil, err
	}
	registerAuthRoutes(r, api, authRouteDeps{
		AuthHandler:       authHandler,
		InvitationHandler: invitationHandler,
		PermissionChecker: checker,
	})

	userHandler, err := handlers.NewUserHandler(db)
	if err != nil {
		return nil, err
	}
	registerUserRoutes(api, userHandler, checker)

	orgHandler, err := handlers.NewOrganizationHandler(db)
	if err != nil {
		return nil, err
	}
	teamHandler, err := handlers.NewTeamHandler(db)
	if err != nil {
		return nil, err
	}
	registerOrganizationRoutes(api, orgHandler, teamHandler, checker)

	roleHandler, err := handlers.NewRoleHandler(db)
	if err != nil {
		return nil, err
	}
	registerRoleRoutes(api, roleHandler, checker)

	accessHandler, err := handlers.NewStoryAccessHandler(db)
	if err != nil {
		return nil, err
	}
	registerStoryAccessRoutes(api, accessHandler)

	storyHandler, err := handlers.NewStoryHandler(db, deps.Parser)
	if err != nil {
		return nil, err
	}
	mediaHandler, err := handlers.NewMediaHandler(db, deps.Media)
	if err != nil {
		return nil, err
	}
	artControlHandler, err := handlers.NewArtControlHandler(db)
	if err != nil {
		return nil, err
	}
	chatHandler, err := handlers.NewChatHandler(db)
	if err != nil {
		return nil, err
	}
	registerStoryRoutes(api, storyRouteDeps{
		Stories:    storyHandler,
		Media:      mediaHandler,
		ArtControl: artControlHandler,
		Chats:      chatHandler,
		Checker:    checker,
		DB:         db,
	})

	departmentHandler, err := handlers.NewDepartmentHandler(db, hub)
	if err != nil {
		return nil, err
	}
	registerDepartmentRoutes(api, departmentHandler, db, checker)

	talentHandler, err := handlers.NewTalentHandler(db, hub)
	if err != nil {
		return nil, err
	}
	registerTalentRoutes(api, talentHandler, db, checker)

	notificationHandler, err := handlers.NewNotificationHandler(db, hub)
	if err != nil {
		return nil, err
	}
	registerNotificationRoutes(api, notificationHandler)

	realtimeHandler := handlers.NewRealtimeHandler(hub, jwt)
	api.GET("/ws", realtimeHandler.Stream)

	sessionHandler := handlers.NewSessionHandler(db, sessions)
	registerSessionRoutes(api, sessionHandler)

	if err := registerAuditRoutes(api, db, checker); err != nil {
		return nil, err
	}

	if err := registerSecurityRoutes(api, db, jwt, cfg, checker); err != nil {
		return nil, err
	}

	setupHandler, err := handlers.NewSetupHandler(db)
	if err != nil {
		return nil, err
	}
	registerSetupRoutes(r, setupHandler)

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
