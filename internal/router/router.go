package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hpms-api/internal/config"
	"github.com/jwalitptl/hpms-api/internal/email"
	appointmentHandler "github.com/jwalitptl/hpms-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/hpms-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/hpms-api/internal/handler/doctor"
	"github.com/jwalitptl/hpms-api/internal/handler/health"
	medicalHandler "github.com/jwalitptl/hpms-api/internal/handler/medical"
	patientHandler "github.com/jwalitptl/hpms-api/internal/handler/patient"
	prometheusHandler "github.com/jwalitptl/hpms-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/hpms-api/internal/handler/user"
	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/internal/service/appointment"
	"github.com/jwalitptl/hpms-api/internal/service/auth"
	"github.com/jwalitptl/hpms-api/internal/service/doctor"
	"github.com/jwalitptl/hpms-api/internal/service/medical"
	"github.com/jwalitptl/hpms-api/internal/service/notification"
	"github.com/jwalitptl/hpms-api/internal/service/patient"
	"github.com/jwalitptl/hpms-api/internal/service/user"
	"github.com/jwalitptl/hpms-api/internal/sms"
	jwtauth "github.com/jwalitptl/hpms-api/pkg/auth"
	"github.com/jwalitptl/hpms-api/pkg/metrics"
	"github.com/jwalitptl/hpms-api/pkg/security"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Dependencies are the collaborators the router wires into services.
type Dependencies struct {
	Store    *repository.Store
	Notifier notification.Notifier
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Checks   []health.Check
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware

	healthH   Handler
	metricsH  Handler
	resources []Handler
}

func NewRouter(cfg *config.Config, deps Dependencies) *Router {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.ConfigureValidation()

	if deps.Metrics == nil {
		reg := prometheus.NewRegistry()
		deps.Metrics = metrics.NewMetrics("hpms", reg)
		deps.Gatherer = reg
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.NewDispatcher(email.LogSender{}, sms.LogSender{}, cfg.Notification.Timeout, deps.Metrics)
	}

	store := deps.Store
	authSvc := auth.NewService(
		store.Users,
		store.Tokens,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry),
		auth.WithRoleSignup(cfg.RoleSignupAllowed()),
	)
	authMW := middleware.NewAuthMiddleware(authSvc, cfg.Auth.CookieName)

	r := &Router{
		engine:   gin.New(),
		auth:     authMW,
		healthH:  health.NewHandler(deps.Checks...),
		metricsH: prometheusHandler.New(deps.Gatherer),
		resources: []Handler{
			authHandler.NewHandler(authSvc, authMW, authHandler.CookieConfig{
				Name:   cfg.Auth.CookieName,
				Secure: cfg.Auth.CookieSecure,
			}),
			userHandler.NewHandler(user.NewService(store.Users), authSvc, authMW),
			patientHandler.NewHandler(patient.NewService(store.Patients, store.MedicalHistory, store.Appointments), authMW),
			doctorHandler.NewHandler(doctor.NewService(store.Doctors, store.Appointments), authMW),
			appointmentHandler.NewHandler(appointment.NewService(
				store.Appointments, store.Patients, store.Doctors, deps.Notifier, deps.Metrics,
			), authMW),
			medicalHandler.NewHandler(medical.NewService(store.MedicalHistory, store.Patients), authMW),
		},
	}

	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(deps.Metrics),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig(cfg.Auth.CookieSecure)),
		middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.AllowedOrigins)),
		middleware.ErrorHandler(),
	)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:        cfg.RateLimit.RequestsPerSecond,
			Burst:      cfg.RateLimit.Burst,
			IdleExpiry: cfg.RateLimit.IdleExpiry,
		})
		r.engine.Use(limiter.RateLimit())
	}
	r.engine.Use(middleware.SizeLimit(cfg.Server.MaxBodyBytes))

	r.setup()
	return r
}

func (r *Router) setup() {
	root := r.engine.Group("")
	r.healthH.RegisterRoutes(root)
	r.metricsH.RegisterRoutes(root)

	api := r.engine.Group("/api/v1")
	for _, h := range r.resources {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
