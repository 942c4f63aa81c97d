package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"MusicHub/config"
	"MusicHub/core/intake"
	"MusicHub/core/notify"
	"MusicHub/logger"
	"MusicHub/repository"
	"MusicHub/store"
)

// Start initializes and starts the HTTP server, blocking until shutdown.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutputPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	st, err := store.FromConfig(cfg)
	if err != nil {
		logger.Fatal("failed to open store", logger.ErrorField(err))
	}
	if closer, ok := st.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	logger.Info("store ready", logger.String("backend", cfg.StoreBackend))

	userRepo := repository.NewStoreUserRepository(st)
	subRepo := repository.NewStoreSubmissionRepository(st)
	counterRepo := repository.NewStoreCounterRepository(st)

	if err := repository.EnsureSeedUsers(userRepo); err != nil {
		logger.Fatal("failed to seed directory", logger.ErrorField(err))
	}

	hub := notify.NewHub()
	go hub.Run()
	defer hub.Stop()

	intakeSvc := intake.NewService(userRepo, subRepo, counterRepo, hub)
	apiHandler := NewAPIHandler(userRepo, subRepo, intakeSvc, hub, cfg)

	router := mux.NewRouter()

	// CORS for the dashboard frontend.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Authentication
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)

	// Submissions
	router.HandleFunc("/api/submissions", apiHandler.AuthMiddleware(apiHandler.CreateSubmissionHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/submissions", apiHandler.AuthMiddleware(apiHandler.GetSubmissionsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/submissions/{id}", apiHandler.AuthMiddleware(apiHandler.GetSubmissionHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/submissions/{id}/status", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.UpdateStatusHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/submissions/{id}", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.UpdateSubmissionHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/submissions/{id}", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.DeleteSubmissionHandler))).Methods(http.MethodDelete)

	// Accounts
	router.HandleFunc("/api/users/profile", apiHandler.AuthMiddleware(apiHandler.GetProfileHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/users/profile", apiHandler.AuthMiddleware(apiHandler.UpdateProfileHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/users", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.ListUsersHandler))).Methods(http.MethodGet)
	router.HandleFunc("/api/users", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.CreateUserHandler))).Methods(http.MethodPost)
	router.HandleFunc("/api/users/{username}", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.UpdateUserHandler))).Methods(http.MethodPut)
	router.HandleFunc("/api/users/{username}", apiHandler.AuthMiddleware(apiHandler.ManagerOnly(apiHandler.DeleteUserHandler))).Methods(http.MethodDelete)

	// Misc
	router.HandleFunc("/api/meta", apiHandler.MetaHandler).Methods(http.MethodGet)
	router.HandleFunc("/ws", apiHandler.NotifyHandler)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
