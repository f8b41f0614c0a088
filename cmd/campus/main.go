// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/campus-go/internal/apiclient"
	"github.com/olegiv/campus-go/internal/auth"
	"github.com/olegiv/campus-go/internal/cache"
	"github.com/olegiv/campus-go/internal/config"
	"github.com/olegiv/campus-go/internal/handler"
	"github.com/olegiv/campus-go/internal/imaging"
	"github.com/olegiv/campus-go/internal/logging"
	"github.com/olegiv/campus-go/internal/metrics"
	"github.com/olegiv/campus-go/internal/middleware"
	"github.com/olegiv/campus-go/internal/model"
	"github.com/olegiv/campus-go/internal/render"
	"github.com/olegiv/campus-go/internal/scheduler"
	"github.com/olegiv/campus-go/internal/service"
	"github.com/olegiv/campus-go/internal/session"
	"github.com/olegiv/campus-go/internal/store"
	"github.com/olegiv/campus-go/internal/workspace"
	"github.com/olegiv/campus-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// limiterTableSize bounds the per-IP rate limiter table.
const limiterTableSize = 10000

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "campus - college admissions website\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_API_URL         Backend REST API base URL (default: http://localhost:5000/api)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_DB_PATH         SQLite database for sessions and events (default: ./data/campus.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_COLLEGE_NAME    Name shown in the header and on documents\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_REDIS_URL       Redis URL for the public data cache (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("campus %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also go to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	sessionManager := session.New(db, cfg.IsDevelopment())
	tokens := session.NewTokenStore(sessionManager)

	m := metrics.New()

	cacheStore, cacheInfo, err := cache.New(cache.Config{
		RedisURL:         cfg.RedisURL,
		Prefix:           cfg.CachePrefix,
		DefaultTTL:       cfg.CacheTTL,
		MaxSize:          cfg.CacheMaxSize,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheStore.Close() }()
	if sp, ok := cacheStore.(cache.StatsProvider); ok {
		m.RegisterCache(sp)
	}
	slog.Info("cache initialized", "backend", cacheInfo.Backend, "fallback", cacheInfo.Fallback)

	api, err := apiclient.New(apiclient.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Tokens:   tokens,
		Observer: m,
		Logger:   logger,
		OnAuthFailure: func(ctx context.Context, e *apiclient.Error) {
			// A rejected token is dropped; a forbidden one is kept.
			if e.Status == http.StatusUnauthorized {
				tokens.Clear(ctx)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("initializing api client: %w", err)
	}

	catalog := service.NewCatalog(api.Public, cacheStore, cfg.CacheTTL)

	workspaces := workspace.NewRegistry(cfg.WorkspaceIdleTTL)
	m.RegisterGauge("campus_admin_workspaces", "Open admin workspaces", func() float64 {
		return float64(workspaces.Len())
	})
	adminService := workspace.NewService(api.Admin, workspace.Options{
		Observer: m,
		Logger:   logger,
		OnMutation: func(ctx context.Context) {
			catalog.Invalidate(ctx)
		},
	})

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		SiteName:       cfg.CollegeName,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	rateLimiter := middleware.NewRateLimiter(10.0, 20)

	// Background jobs
	sched := scheduler.New(logger, 2*time.Minute)
	jobs := []scheduler.Job{
		scheduler.WarmCache(cfg.WarmupSchedule, catalog.Warm),
		scheduler.SweepWorkspaces(workspaces, logger),
		scheduler.PurgeEvents(store.New(db), cfg.EventRetention, time.Now, logger),
		scheduler.PruneLimiters(rateLimiter, limiterTableSize),
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("registering job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()
	go loginProtection.Run(bgCtx, 5*time.Minute)

	// First warm-up in the background so startup does not wait on the backend
	go func() {
		if err := catalog.Warm(bgCtx); err != nil {
			slog.Warn("initial cache warm-up failed", "category", model.EventCategoryCache, "error", err)
		}
	}()

	images := imaging.NewProcessor(cfg.ImageMaxWidth)

	publicHandler := handler.NewPublicHandler(catalog, renderer, tokens, adminService, images, cfg.UploadMaxSize)
	authHandler := handler.NewAuthHandler(api.Auth, renderer, sessionManager, tokens, loginProtection, workspaces)
	adminHandler := handler.NewAdminHandler(handler.AdminConfig{
		Service:        adminService,
		Workspaces:     workspaces,
		SessionManager: sessionManager,
		Renderer:       renderer,
		Payments:       api.Admin,
		Images:         images,
		MaxUpload:      cfg.UploadMaxSize,
		College:        cfg.CollegeName,
	})
	healthHandler := handler.NewHealthHandler(api, cacheInfo, sched, workspaces)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(m.Middleware)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30*time.Second, "/admin/id-cards/", "/admin/payments/"))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), backendOrigin(cfg))))
	r.Use(middleware.RequestPath)
	r.Use(middleware.SiteName(cfg.CollegeName))

	// Health and metrics skip sessions and CSRF
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealth+"/live", healthHandler.Liveness)
	if cfg.MetricsEnabled {
		r.Handle(handler.RouteMetrics, m.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	// Static assets: cache for 1 day
	r.Handle("/static/*", middleware.StaticCache(86400)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr()))
	requireAdmin := middleware.RequireRoles(tokens, auth.RoleAdmin)

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(csrfMiddleware)
		r.Use(rateLimiter.Middleware)

		r.Get(handler.RouteRoot, publicHandler.Home)
		r.Get(handler.RouteAbout, publicHandler.About)
		r.Get(handler.RouteGallery, publicHandler.Gallery)
		r.With(requireAdmin).Post(handler.RouteGallery+handler.RouteSuffixUpload, publicHandler.GalleryUpload)
		r.Get(handler.RouteCourses, publicHandler.Courses)
		r.Get(handler.RouteCourseID, publicHandler.Course)
		r.Get(handler.RouteCategoryID, publicHandler.Category)
		r.Get(handler.RouteDepartmentName, publicHandler.Department)

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			registerAdminRoutes(r, adminHandler)
		})

		r.NotFound(publicHandler.NotFound)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for uploads and PDF downloads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "backend", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// registerAdminRoutes registers the dashboard tabs under /admin. HTML
// forms cannot send PUT or DELETE, so updates and deletes are POSTs.
func registerAdminRoutes(r chi.Router, h *handler.AdminHandler) {
	r.Get("/", h.Dashboard)

	r.Get(handler.RouteAdminContent, h.Content)
	r.Post(handler.RouteAdminContent, h.SaveContent)
	r.Post(handler.RouteAdminGalleryCategories, h.AddGalleryCategory)
	r.Post(handler.RouteAdminContent+handler.RouteParamID, h.SaveContent)
	r.Post(handler.RouteAdminContent+handler.RouteParamID+handler.RouteSuffixDelete, h.DeleteContent)

	r.Get(handler.RouteAdminUsers, h.Users)

	r.Get(handler.RouteAdminCourses, h.Courses)
	r.Post(handler.RouteAdminCourses, h.SaveCourse)
	r.Post(handler.RouteAdminCourses+handler.RouteParamID, h.SaveCourse)
	r.Post(handler.RouteAdminCourses+handler.RouteParamID+handler.RouteSuffixDelete, h.DeleteCourse)
	r.Post(handler.RouteAdminDepartments, h.AddDepartment)
	r.Post(handler.RouteAdminCategories, h.AddCategory)

	r.Get(handler.RouteAdminAdmissions, h.Admissions)
	r.Post(handler.RouteAdminAdmissionStatus, h.AdmissionStatus)

	r.Get(handler.RouteAdminTestimonials, h.Testimonials)
	r.Post(handler.RouteAdminTestimonials, h.SaveTestimonial)
	r.Post(handler.RouteAdminTestimonials+handler.RouteParamID, h.SaveTestimonial)
	r.Post(handler.RouteAdminTestimonials+handler.RouteParamID+handler.RouteSuffixDelete, h.DeleteTestimonial)

	r.Get(handler.RouteAdminPayments, h.Payments)
	r.Get(handler.RouteAdminPaymentReceipt, h.PaymentReceipt)

	r.Get(handler.RouteAdminIDCards, h.IDCards)
	r.Get(handler.RouteAdminIDCardPDF, h.IDCardPDF)
}

// backendOrigin is the backend's scheme and host, allowed as an image
// source in development where uploads are served over plain http.
func backendOrigin(cfg *config.Config) string {
	if !cfg.IsDevelopment() {
		return ""
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
