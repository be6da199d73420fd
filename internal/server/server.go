// Package server wires repositories, the identity provider and feature modules
// into one gin engine.
package server

import (
	"log"
	"net/http"

	"suryawash/internal/config"
	"suryawash/internal/identity"
	"suryawash/internal/middleware"
	"suryawash/internal/modules/admin"
	"suryawash/internal/modules/auth"
	"suryawash/internal/modules/catalog"
	"suryawash/internal/modules/membership"
	"suryawash/internal/modules/payment"
	"suryawash/internal/modules/session"
	"suryawash/internal/pkg/cache"
	jwtsvc "suryawash/internal/pkg/jwt"
	"suryawash/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	loginPage      = "login.html"
	adminLoginPage = "admin/login.html"
)

// App is the assembled HTTP application.
type App struct {
	Router   *gin.Engine
	Provider *identity.LocalProvider
	Hub      *session.Hub
}

// Options holds collaborators that differ between production and tests.
type Options struct {
	Cache   cache.Cache
	SMS     identity.SMSSender
	Gateway payment.Gateway
	// BcryptCost 0 means bcrypt.DefaultCost.
	BcryptCost int
	Loggerf    func(format string, args ...interface{})
}

func New(cfg *config.Config, db *gorm.DB, opts Options) *App {
	loggerf := opts.Loggerf
	if loggerf == nil {
		loggerf = log.Printf
	}
	gateway := opts.Gateway
	if gateway == nil {
		gateway = payment.NewSimulatedGateway(cfg.PaymentStepDelay, loggerf)
	}

	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	tokens := jwtsvc.New(cfg.JWTSecret, cfg.SessionTTL)
	provider := identity.NewLocalProvider(accountRepo, sessionRepo, tokens, opts.Cache, opts.SMS, identity.Config{
		ChallengeSecret:   cfg.ChallengeSecret,
		ChallengeTTL:      cfg.ChallengeTTL,
		OTPTTL:            cfg.OTPTTL,
		OTPResendCooldown: cfg.OTPResendCooldown,
		OTPWindow:         cfg.OTPWindow,
		OTPMaxPerWindow:   cfg.OTPMaxPerWindow,
		BcryptCost:        opts.BcryptCost,
	}, loggerf)

	authService := auth.NewService(provider, profileRepo, adminRepo, loggerf)
	authHandler := auth.NewHandler(authService)

	catalogService := catalog.NewService(catalogRepo, loggerf)
	catalogHandler := catalog.NewHandler(catalogService)

	adminService := admin.NewService(profileRepo, adminRepo, provider, loggerf)
	adminHandler := admin.NewHandler(adminService)

	membershipService := membership.NewService(catalogRepo, profileRepo, cfg.CatalogFetchTimeout, loggerf)
	membershipHandler := membership.NewHandler(membershipService)

	paymentService := payment.NewService(catalogRepo, transactionRepo, profileRepo, gateway, loggerf)
	paymentHandler := payment.NewHandler(paymentService, loggerf)

	hub := session.NewHub()
	wsHandler := session.NewWSHandler(hub, authService, authService, cfg.CORSAllowedOrigins, loggerf)

	r := gin.New()
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	wsHandler.RegisterRoutes(r)

	optional := middleware.OptionalSession(authService)
	required := middleware.RequireSession(authService, loginPage)

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		membershipHandler.RegisterRoutes(v1, optional)
		paymentHandler.RegisterRoutes(v1, optional, required)

		// signed-in users
		protected := v1.Group("")
		protected.Use(required)
		{
			authHandler.RegisterProtectedRoutes(protected)
		}

		// administrators
		adminGroup := v1.Group("/admin")
		adminGroup.Use(middleware.RequireAdmin(authService, adminLoginPage))
		{
			adminHandler.RegisterRoutes(adminGroup)
			catalogHandler.RegisterAdminRoutes(adminGroup)
		}
	}

	return &App{Router: r, Provider: provider, Hub: hub}
}
