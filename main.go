package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"pitchcoach/store"
)

type Server struct {
	router     *mux.Router
	httpServer *http.Server
	config     *Config
	modelStore *store.Service
	db         *pgxpool.Pool
}

type Config struct {
	Port           string
	ModelPath      string
	ModelCacheTTL  time.Duration
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	AllowedOrigins []string
}

func NewConfig() *Config {
	// .env is optional; env vars win either way
	_ = godotenv.Load()

	ttl := store.DefaultCacheTTL
	if envTTL := os.Getenv("MODEL_CACHE_TTL"); envTTL != "" {
		if seconds, err := strconv.Atoi(envTTL); err == nil && seconds > 0 {
			ttl = time.Duration(seconds) * time.Second
		}
	}

	origins := []string{"http://localhost:3000", "http://localhost:8088"}
	if envOrigins := os.Getenv("ALLOWED_ORIGINS"); envOrigins != "" {
		origins = strings.Split(envOrigins, ",")
	}

	return &Config{
		Port:           getEnv("PORT", "8088"),
		ModelPath:      getEnv("MODEL_PATH", "data/model_data.json"),
		ModelCacheTTL:  ttl,
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "pitchcoach_user"),
		DBPassword:     getEnv("DB_PASSWORD", "pitchcoach_pass"),
		DBName:         getEnv("DB_NAME", "pitchcoach"),
		AllowedOrigins: origins,
	}
}

func NewServer(config *Config) (*Server, error) {
	modelStore := store.NewService(config.ModelPath, config.ModelCacheTTL)

	s := &Server{
		config:     config,
		router:     mux.NewRouter(),
		modelStore: modelStore,
	}

	// The database source is optional; without DB_HOST the bundled model
	// file is the only source.
	if config.DBHost != "" {
		db, err := connectDatabase(config)
		if err != nil {
			log.Printf("Warning: model database unavailable: %v", err)
			log.Printf("Falling back to model file %s", config.ModelPath)
		} else {
			s.db = db
			modelStore.SetPostgresSource(store.NewPostgresSource(db, store.DefaultDocumentName))
			log.Printf("Model database source initialized")
		}
	}

	s.setupRoutes()
	return s, nil
}

func connectDatabase(config *Config) (*pgxpool.Pool, error) {
	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		config.DBUser, config.DBPassword, config.DBHost, config.DBPort, config.DBName)

	dbConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse db config: %w", err)
	}

	// Connection pool settings
	dbConfig.MaxConns = 10
	dbConfig.MinConns = 2
	dbConfig.MaxConnLifetime = time.Hour
	dbConfig.MaxConnIdleTime = time.Minute * 30

	db, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func (s *Server) setupRoutes() {
	// Root endpoint for API documentation
	s.router.HandleFunc("/", s.rootHandler).Methods("GET")

	// API version prefix
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Session endpoints
	api.HandleFunc("/session/start", s.startSessionHandler).Methods("POST")
	api.HandleFunc("/session/pitch", s.submitPitchHandler).Methods("POST")

	// Static reference data for the setup screen and the zone grid
	api.HandleFunc("/zones", s.zonesHandler).Methods("GET")
	api.HandleFunc("/pitch-types", s.pitchTypesHandler).Methods("GET")

	// Operational endpoints
	api.HandleFunc("/metrics", s.metricsHandler).Methods("GET")
	api.HandleFunc("/model/refresh", s.refreshModelHandler).Methods("POST")

	// Apply middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
}

func (s *Server) Start() error {
	// Setup CORS for the browser frontend
	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})

	handler := c.Handler(handlers.CompressHandler(s.router))

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting Pitch Coach on port %s (model: %s)", s.config.Port, s.config.ModelPath)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down Pitch Coach...")

	if s.db != nil {
		s.db.Close()
	}

	return s.httpServer.Shutdown(ctx)
}

// Middleware
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a custom response writer to capture status code
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)
		appMetrics.RecordRequest(duration, lrw.statusCode)
		log.Printf("%s %s %d %v", r.Method, r.RequestURI, lrw.statusCode, duration)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Helper types and functions
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	config := NewConfig()

	server, err := NewServer(config)
	if err != nil {
		log.Fatal("Failed to create server:", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatal("Server shutdown failed:", err)
		}
		log.Println("Server shutdown complete")
	}()

	if err := server.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed to start:", err)
	}
}
