package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gamehub/internal/config"
	"gamehub/internal/database"
	"gamehub/internal/handlers"
	"gamehub/internal/models"
	"gamehub/internal/repository"
	"gamehub/internal/security"
	"gamehub/internal/service"
	"gamehub/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	handlers.SetCurrentStep("Connecting to database...")
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	handlers.CompleteStep("Database connection")

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	handlers.SetCurrentStep("Running migrations...")
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	handlers.CompleteStep("Running migrations")

	log.Println("Migrations completed successfully")

	// Seed bad words filter
	if err := db.SeedBadWords(); err != nil {
		log.Printf("Warning: Failed to seed bad words filter: %v", err)
	}

	// Load templates
	handlers.SetCurrentStep("Loading templates...")
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	handlers.CompleteStep("Loading templates")

	log.Println("Templates loaded successfully")

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	cardRepo := repository.NewCardRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	quizRepo := repository.NewQuizRepository(db)

	// Seed the quiz question bank
	handlers.SetCurrentStep("Seeding question bank...")
	bank, err := models.LoadQuestionBank(cfg.QuestionBank)
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	if err := quizRepo.SeedQuestions(bank); err != nil {
		log.Fatalf("Failed to seed question bank: %v", err)
	}
	questions, err := quizRepo.GetAllQuestions()
	if err != nil {
		log.Fatalf("Failed to load questions: %v", err)
	}
	handlers.CompleteStep("Seeding question bank")

	// Initialize services
	handlers.SetCurrentStep("Initializing services...")
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	authService := service.NewAuthService(profileRepo, cfg.SessionDuration)
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.EmailFrom, cfg.EmailName, cfg.BaseURL)
	if err != nil {
		log.Printf("Warning: email service disabled: %v", err)
	}
	verificationService := service.NewVerificationService(profileRepo, cardRepo, verificationRepo, notifRepo, service.QuizBankFromQuestions(questions), rng)
	if emailService != nil {
		verificationService.AttachEmailer(emailService)
	}
	quizService := service.NewQuizService(quizRepo, profileRepo, notifRepo, rng)
	chatService := service.NewChatService(db, chatRepo, profileRepo, notifRepo)
	backupService := service.NewBackupService(db)

	avatarStore, err := storage.NewAvatarStore(cfg.COSSecretID, cfg.COSSecretKey, cfg.COSBucketURL, cfg.COSDomain)
	if err != nil {
		log.Fatalf("Failed to initialize avatar storage: %v", err)
	}
	if !avatarStore.IsEnabled() {
		log.Println("Avatar uploads disabled (object storage not configured)")
	}

	csrfSecret := cfg.CSRFSecret
	if csrfSecret == "" {
		csrfSecret = security.GenerateSessionID()
		log.Println("CSRF_SECRET not set, using a random secret (tokens reset on restart)")
	}

	oauthProviders := handlers.BuildOAuthProviders(cfg)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, csrfSecret)
	authHandler := handlers.NewAuthHandler(authService, emailService, templates, oauthProviders, cfg.BaseURL)
	dashboardHandler := handlers.NewDashboardHandler(profileRepo, cardRepo, notifRepo, templates)
	verificationHandler := handlers.NewVerificationHandler(verificationService, templates)
	cardHandler := handlers.NewCardHandler(cardRepo, verificationRepo, templates)
	quizHandler := handlers.NewQuizHandler(quizService, templates)
	chatHub := handlers.NewChatHub()
	go chatHub.Run()
	chatHandler := handlers.NewChatHandler(chatService, chatHub, templates)
	notificationHandler := handlers.NewNotificationHandler(notifRepo)
	profileHandler := handlers.NewProfileHandler(profileRepo, avatarStore, templates, cfg.UploadMaxSize)
	adminHandler := handlers.NewAdminHandler(templates, backupService, cardRepo, profileRepo, middleware, version)
	handlers.CompleteStep("Initializing services")

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /startup", handlers.ShowStartupStatus)
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /forgot-password", authHandler.ShowForgotPassword)
	mux.HandleFunc("POST /forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("GET /auth/reset-password", authHandler.ShowResetPassword)
	mux.HandleFunc("POST /auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Hub pages
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboardHandler.Home))
	mux.HandleFunc("GET /leaderboard", middleware.RequireAuth(dashboardHandler.Leaderboard))
	mux.HandleFunc("GET /api/leaderboard", middleware.RequireAuth(dashboardHandler.LeaderboardJSON))

	// Verification flow
	mux.HandleFunc("POST /verification/start", middleware.RequireAuth(verificationHandler.Start))
	mux.HandleFunc("POST /verification/abandon", middleware.RequireAuth(verificationHandler.Abandon))
	mux.HandleFunc("GET /verification/status", middleware.RequireAuth(verificationHandler.Status))
	mux.HandleFunc("GET /verification/math", middleware.RequireAuth(verificationHandler.MathQuestion))
	mux.HandleFunc("POST /verification/math", middleware.RequireAuth(verificationHandler.MathAnswer))
	mux.HandleFunc("GET /verification/quiz", middleware.RequireAuth(verificationHandler.QuizQuestion))
	mux.HandleFunc("POST /verification/quiz", middleware.RequireAuth(verificationHandler.QuizAnswer))
	mux.HandleFunc("POST /verification/touch/press", middleware.RequireAuth(verificationHandler.TouchPress))
	mux.HandleFunc("POST /verification/touch/release", middleware.RequireAuth(verificationHandler.TouchRelease))
	mux.HandleFunc("POST /verification/voice/start", middleware.RequireAuth(verificationHandler.VoiceStart))
	mux.HandleFunc("POST /verification/voice/stop", middleware.RequireAuth(verificationHandler.VoiceStop))

	// Cards
	mux.HandleFunc("GET /cards", middleware.RequireAuth(cardHandler.Page))
	mux.HandleFunc("GET /api/cards", middleware.RequireAuth(cardHandler.List))
	mux.HandleFunc("GET /api/verification/history", middleware.RequireAuth(cardHandler.History))

	// Quiz game
	mux.HandleFunc("GET /quiz", middleware.RequireAuth(quizHandler.Page))
	mux.HandleFunc("POST /quiz/start", middleware.RequireAuth(quizHandler.Start))
	mux.HandleFunc("POST /quiz/answer", middleware.RequireAuth(quizHandler.Answer))
	mux.HandleFunc("GET /api/quiz/history", middleware.RequireAuth(quizHandler.History))

	// Community chat
	mux.HandleFunc("GET /chat", middleware.RequireAuth(chatHandler.Page))
	mux.HandleFunc("GET /chat/ws", middleware.RequireAuth(chatHandler.Stream))
	mux.HandleFunc("GET /api/chat/history", middleware.RequireAuth(chatHandler.History))

	// Notifications
	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(notificationHandler.List))
	mux.HandleFunc("GET /api/notifications/unread", middleware.RequireAuth(notificationHandler.UnreadCount))
	mux.HandleFunc("POST /api/notifications/{id}/read", middleware.RequireAuth(notificationHandler.MarkRead))
	mux.HandleFunc("POST /api/notifications/read-all", middleware.RequireAuth(notificationHandler.MarkAllRead))

	// Profile
	mux.HandleFunc("GET /profile", middleware.RequireAuth(profileHandler.Page))
	mux.HandleFunc("POST /profile/username", middleware.RequireAuth(profileHandler.UpdateUsername))
	mux.HandleFunc("POST /profile/password", middleware.RequireAuth(profileHandler.UpdatePassword))
	mux.HandleFunc("POST /profile/avatar", middleware.RequireAuth(profileHandler.UploadAvatar))

	// Admin routes
	mux.HandleFunc("GET /admin/dashboard", middleware.RequireAdmin(adminHandler.ShowAdminDashboard))
	mux.HandleFunc("POST /admin/difficulty/{level}", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.UpdateDifficulty)))
	mux.HandleFunc("GET /admin/export", middleware.RequireAdmin(adminHandler.ExportDatabase))
	mux.HandleFunc("POST /admin/import", middleware.RequireAdmin(middleware.CSRFProtect(adminHandler.ImportDatabase)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background workers
	go approvePendingVerifications(verificationService)
	go cleanupExpiredSessions(authService)

	handlers.CompleteStep("Server ready")
	handlers.MarkReady()

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

const version = "1.0.0"

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "*.tmpl"),
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesPath)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"div": func(a, b int) int {
			if b == 0 {
				return 0
			}
			return a / b
		},
		"percent": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return part * 100 / total
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// approvePendingVerifications sweeps pending badge approvals whose
// delay has elapsed.
func approvePendingVerifications(verificationService *service.VerificationService) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		approved, err := verificationService.ApproveDuePending(time.Now())
		if err != nil {
			log.Printf("Error approving pending verifications: %v", err)
			continue
		}
		if approved > 0 {
			log.Printf("Approved %d pending verification(s)", approved)
		}
	}
}

// cleanupExpiredSessions periodically removes expired sessions and
// stale password reset tokens.
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		}
		if err := authService.CleanupExpiredPasswordResetTokens(); err != nil {
			log.Printf("Error cleaning up expired reset tokens: %v", err)
		}
	}
}
