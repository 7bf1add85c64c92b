package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cover-letter-studio/internal/blob"
	"github.com/jonathan/cover-letter-studio/internal/cache"
	"github.com/jonathan/cover-letter-studio/internal/config"
	"github.com/jonathan/cover-letter-studio/internal/db"
	"github.com/jonathan/cover-letter-studio/internal/letters"
	"github.com/jonathan/cover-letter-studio/internal/llm"
	"github.com/jonathan/cover-letter-studio/internal/profile"
	"github.com/jonathan/cover-letter-studio/internal/server/middleware"
	"github.com/jonathan/cover-letter-studio/internal/server/ratelimit"
	"github.com/jonathan/cover-letter-studio/internal/upload"
)

// ProfileService runs the profile save workflow.
type ProfileService interface {
	Save(ctx context.Context, ownerID uuid.UUID, input profile.Input) profile.SaveResult
	Get(ctx context.Context, ownerID uuid.UUID) (*db.Profile, error)
}

// LetterService runs the cover-letter workflows.
type LetterService interface {
	Generate(ctx context.Context, ownerID uuid.UUID, input letters.GenerateInput) (*db.CoverLetter, error)
	Edit(ctx context.Context, ownerID, letterID uuid.UUID, input letters.EditInput) (*db.CoverLetter, error)
	Delete(ctx context.Context, ownerID, letterID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) ([]db.CoverLetter, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	llmClient   llm.Client
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler

	profileService ProfileService
	letterService  LetterService

	// pageCache holds rendered GET responses per owner; the services
	// revalidate it after every successful write.
	pageCache *cache.Cache

	blobStore    *blob.Store
	uploadLimits upload.Limits
}

// New creates a new server instance and verifies its backends.
func New(cfg config.Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	modelConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		modelConfig = modelConfig.WithModel(llm.TierStandard, cfg.Model)
	}
	llmClient, err := llm.NewClient(ctx, modelConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	blobStore, err := blob.NewStore(cfg.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	pageCache := cache.New()

	s := &Server{
		db:             database,
		llmClient:      llmClient,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.LoadConfig()),
		jwtService:     NewJWTService(jwtConfig),
		userService:    NewUserService(database, passwordConfig),
		profileService: profile.NewService(database, pageCache),
		letterService:  letters.NewService(database, llmClient, pageCache),
		pageCache:      pageCache,
		blobStore:      blobStore,
		uploadLimits: upload.Limits{
			Accept: map[string][]string{
				"application/pdf":    {".pdf"},
				"application/msword": {".doc"},
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
			},
			MaxSize:  cfg.MaxUploadBytes,
			MaxFiles: cfg.MaxUploadFiles,
		},
	}
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls the LLM inline
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the router. Auth endpoints and the health check are
// public; everything else requires a valid bearer token.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux.Handle("PUT /auth/password", protected(s.handleUpdatePassword))
	mux.Handle("GET /profile", protected(s.handleGetProfile))
	mux.Handle("PUT /profile", protected(s.handleSaveProfile))
	mux.Handle("GET /cover-letters", protected(s.handleListLetters))
	mux.Handle("POST /cover-letters", protected(s.handleGenerateLetter))
	mux.Handle("PUT /cover-letters/{id}", protected(s.handleEditLetter))
	mux.Handle("DELETE /cover-letters/{id}", protected(s.handleDeleteLetter))
	mux.Handle("POST /uploads", protected(s.handleUploads))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpdatePassword handles password update requests.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// cachedResponse writes the rendered body stored under key, reporting
// whether one was found.
func (s *Server) cachedResponse(w http.ResponseWriter, key string) bool {
	if s.pageCache == nil {
		return false
	}
	body, ok := s.pageCache.Get(key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return true
}

// jsonResponseCaching renders data as JSON, stores the body under key
// for later cachedResponse hits, and writes it with a 200 status.
func (s *Server) jsonResponseCaching(w http.ResponseWriter, key string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error encoding JSON response: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	if s.pageCache != nil {
		s.pageCache.Set(key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// extractClientID extracts the client identifier from the request.
// Uses the IP from RemoteAddr; X-Forwarded-For is deliberately ignored
// because it is client-controlled unless a trusted proxy sets it.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate
// limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
