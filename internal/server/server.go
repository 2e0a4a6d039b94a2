//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/parceldesk/parceldesk/internal/importer"
	"github.com/parceldesk/parceldesk/internal/kafka"
	"github.com/parceldesk/parceldesk/internal/storage"
)

type Storage interface {
	AddParcel(ctx context.Context, fields storage.ParcelFields) (*storage.Parcel, error)
	AddParcels(ctx context.Context, items []storage.ParcelFields) ([]storage.Parcel, error)
	GetParcel(ctx context.Context, id string) (*storage.Parcel, error)
	ListParcels(ctx context.Context, opts storage.ListOptions) ([]storage.Parcel, error)
	UpdateParcel(ctx context.Context, id string, patch storage.ParcelPatch) (*storage.Parcel, error)
	DeleteParcel(ctx context.Context, id string) error
	DeleteParcels(ctx context.Context, status string) (int64, error)
	StatusCounts(ctx context.Context) (map[string]int64, error)
}

type FileImporter interface {
	Import(ctx context.Context, data []byte, filename string, defaultStatus storage.Status) (*importer.ImportResult, error)
}

type Server struct {
	storage      Storage
	importer     FileImporter
	passwordHash []byte
	logger       *zap.Logger
	server       *http.Server
	AuditManager *AuditManager
}

func New(stg Storage, fileImporter FileImporter, gatePassword string, logger *zap.Logger, producer kafka.Producer, auditTopic string) (*Server, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(gatePassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Server{
		storage:      stg,
		importer:     fileImporter,
		passwordHash: passwordHash,
		logger:       logger,
		AuditManager: NewAuditManager(2, 5, 500*time.Millisecond, producer, auditTopic),
	}, nil
}

func (s *Server) Run(ctx context.Context, port string) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.AuditManager.Start(ctx)

	go s.handleShutdown()

	s.logger.Info("Server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleShutdown() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Printf("ERROR: Server shutdown failed: %v", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
		log.Println("HTTP server shutdown completed")
	}

	s.AuditManager.Shutdown(ctx)
	log.Println("Server shutdown completed successfully")

	return nil
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(s.auditLogMiddleware))

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	gated := api.NewRoute().Subrouter()
	gated.Use(mux.MiddlewareFunc(s.passwordAuthMiddleware))

	gated.HandleFunc("/items", s.handleListItems).Methods(http.MethodGet)
	gated.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	gated.HandleFunc("/items", s.handleDeleteItems).Methods(http.MethodDelete)
	gated.HandleFunc("/items/bulk", s.handleBulkCreate).Methods(http.MethodPost)
	gated.HandleFunc("/items/import", s.handleImport).Methods(http.MethodPost)
	gated.HandleFunc("/items/{id}", s.handleGetItem).Methods(http.MethodGet)
	gated.HandleFunc("/items/{id}", s.handleUpdateItem).Methods(http.MethodPut)
	gated.HandleFunc("/items/{id}", s.handleDeleteItem).Methods(http.MethodDelete)
	gated.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	return router
}

// passwordAuthMiddleware gates the API behind the shared dashboard
// password, carried as the basic-auth password (the username is ignored).
func (s *Server) passwordAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, password, ok := r.BasicAuth()
		if !ok || !s.verifyPassword(password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			respondError(w, http.StatusUnauthorized, "unauthorized", "Valid password required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) verifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	if loginRequest.Password == "" {
		respondError(w, http.StatusBadRequest, "password_required", "Password is required")
		return
	}

	if !s.verifyPassword(loginRequest.Password) {
		respondError(w, http.StatusUnauthorized, "invalid_password", "Incorrect password")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": code, "message": message})
}
