// Package main is the entry point for the SAIL Gate Pass application.
// It initializes the web server, database connection, and all HTTP routes.
package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"

	"github.com/mr-alpha10/sail-gate-pass/internal/database"
	"github.com/mr-alpha10/sail-gate-pass/internal/handlers"
	"github.com/mr-alpha10/sail-gate-pass/internal/mail"
	"github.com/mr-alpha10/sail-gate-pass/internal/middleware"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
)

func main() {
	// Load environment overrides from .env when present; real deployments
	// set variables in the environment directly
	_ = godotenv.Load()

	// Initialize database connection pool
	// This establishes connection to PostgreSQL and verifies connectivity
	cfg, err := database.DefaultConfig()
	if err != nil {
		log.Fatalf("Failed to load database configuration: %v", err)
	}
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Apply schema migrations before serving any traffic
	if err := database.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load security configuration
	securityConfig := security.DefaultSecurityConfig()

	// Initialize structured security logger
	securityLogger := security.NewLogger()

	// Initialize security middleware suite
	// Alerter is optional - implement email/Slack/SIEM integration as needed
	securityMiddleware := middleware.NewSecurityMiddleware(
		securityLogger,
		securityConfig,
		nil,
	)

	// Initialize rate limiters for specific endpoints
	loginRateLimiter := security.NewRateLimiter(
		securityConfig.LoginRateLimit, // 5 requests
		12*time.Second,                // per minute (60s / 5 = 12s refill)
	)
	defer loginRateLimiter.Stop()

	submitRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitSubmit, // 10 requests
		6*time.Minute,                  // per hour (60min / 10 = 6min refill)
	)
	defer submitRateLimiter.Stop()

	decisionRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitDecision, // 30 requests
		2*time.Second,                    // per minute (60s / 30 = 2s refill)
	)
	defer decisionRateLimiter.Stop()

	otpRateLimiter := security.NewRateLimiter(
		securityConfig.RateLimitOTP, // 3 requests
		20*time.Second,              // per minute (60s / 3 = 20s refill)
	)
	defer otpRateLimiter.Stop()

	// Outbound mailer for OTP delivery; falls back to console logging when
	// EMAIL_ENABLED is not set
	mailer := mail.NewMailer()

	// Initialize HTML template engine
	// Templates are loaded from ./web/templates with .html extension
	engine := html.New("./web/templates", ".html")
	if os.Getenv("ENV") != "production" {
		engine.Reload(true)
	}

	// Create Fiber application with configuration
	// Views are rendered using the HTML engine with a default layout
	app := fiber.New(fiber.Config{
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
	})

	// Panic recovery (should be first)
	app.Use(recover.New())

	// Request logging with security event tracking
	app.Use(securityMiddleware.RequestLogger())

	// Security headers: CSP, HSTS, X-Frame-Options, X-Content-Type-Options
	app.Use(securityMiddleware.SecureHeaders())

	// Input screening for SQL injection and XSS attempts
	app.Use(securityMiddleware.InputValidation())

	// Serve static files (CSS, JS, images)
	app.Static("/static", "./web/static")

	// Create session store with secure configuration
	// Session expiration MUST be set here (not in middleware)
	store := session.New(session.Config{
		Expiration:     securityConfig.SessionTimeout,
		CookieSecure:   securityConfig.SessionSecure,
		CookieHTTPOnly: securityConfig.SessionHTTPOnly,
		CookieSameSite: securityConfig.SessionSameSite,
		CookieName:     securityConfig.SessionCookieName,
		CookiePath:     "/",
	})

	// Set CSRF token in context for templates
	app.Use(securityMiddleware.SetCSRFToken(store))

	// Initialize HTTP request handlers
	// Each handler manages a specific set of routes
	authHandler := handlers.NewAuthHandler(store, securityConfig, mailer, securityMiddleware, securityLogger)
	visitorHandler := handlers.NewVisitorHandler(store, securityLogger)
	securityHandler := handlers.NewSecurityHandler(store, securityLogger)
	departmentHandler := handlers.NewDepartmentHandler(store, securityLogger)

	// Root route - redirects based on user role
	app.Get("/", func(c *fiber.Ctx) error {
		sess, _ := store.Get(c)
		userRole := sess.Get("user_role")

		switch userRole {
		case models.RoleSecurity:
			return c.Redirect("/security/dashboard")
		case models.RoleDepartmentAgent:
			return c.Redirect("/department/dashboard")
		case models.RoleVisitor:
			return c.Redirect("/visitor/dashboard")
		default:
			return c.Redirect("/login")
		}
	})

	// ========================================
	// Public Routes (No Authentication)
	// ========================================

	app.Get("/login", authHandler.ShowLogin)

	// Login with rate limiting - 5 attempts per minute
	app.Post("/login",
		securityMiddleware.RateLimit(loginRateLimiter, "login"),
		authHandler.Login,
	)

	app.Get("/logout", authHandler.Logout)

	app.Get("/register", authHandler.ShowRegister)
	app.Post("/register", authHandler.Register)

	app.Get("/verify-email", authHandler.ShowVerifyEmail)
	app.Post("/verify-email", authHandler.VerifyEmail)

	// Resend with rate limiting - 3 requests per minute
	app.Post("/resend-otp",
		securityMiddleware.RateLimit(otpRateLimiter, "resend-otp"),
		authHandler.ResendOTP,
	)

	// ========================================
	// Visitor Routes (Protected & Role-Based)
	// ========================================
	visitor := app.Group("/visitor",
		middleware.AuthRequired(store),
		middleware.VisitorOnly(),
		securityMiddleware.CSRFProtection(store),
	)

	visitor.Get("/dashboard", visitorHandler.Dashboard)

	// Submit with rate limiting - 10 applications per hour
	visitor.Post("/applications",
		securityMiddleware.RateLimit(submitRateLimiter, "submit"),
		visitorHandler.SubmitApplication,
	)

	visitor.Get("/applications/:id/pass.png", visitorHandler.PassImage)

	// ========================================
	// Security Officer Routes (Protected & Role-Based)
	// ========================================
	sec := app.Group("/security",
		middleware.AuthRequired(store),
		middleware.SecurityOnly(),
		securityMiddleware.CSRFProtection(store),
	)

	sec.Get("/dashboard", securityHandler.Dashboard)

	// Decisions with rate limiting - 30 per minute
	sec.Post("/applications/:id/forward",
		securityMiddleware.RateLimit(decisionRateLimiter, "forward"),
		securityHandler.Forward,
	)
	sec.Post("/applications/:id/reject",
		securityMiddleware.RateLimit(decisionRateLimiter, "reject"),
		securityHandler.Reject,
	)

	// ========================================
	// Department Agent Routes (Protected & Role-Based)
	// ========================================
	dept := app.Group("/department",
		middleware.AuthRequired(store),
		middleware.DepartmentOnly(),
		securityMiddleware.CSRFProtection(store),
	)

	dept.Get("/dashboard", departmentHandler.Dashboard)

	dept.Post("/applications/:id/approve",
		securityMiddleware.RateLimit(decisionRateLimiter, "approve"),
		departmentHandler.Approve,
	)
	dept.Post("/applications/:id/reject",
		securityMiddleware.RateLimit(decisionRateLimiter, "reject"),
		departmentHandler.Reject,
	)

	// ========================================
	// Start HTTP Server
	// ========================================
	// Port is configurable via PORT environment variable (default: 8080)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	securityLogger.Info("SAIL Gate Pass server starting on port " + port)

	if err := app.Listen(":" + port); err != nil {
		securityLogger.Critical("Failed to start server", err)
		log.Fatalf("Failed to start server: %v", err)
	}
}
