// Package devserver is an in-memory implementation of the items API, good
// enough to click through the client locally and to run end-to-end tests
// against. Nothing is persisted.
package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
)

type account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
}

type Options struct {
	Secret   string
	TokenTTL time.Duration
	Logger   *slog.Logger
	// BcryptCost defaults to bcrypt.DefaultCost; tests lower it.
	BcryptCost int
}

type Server struct {
	secret []byte
	ttl    time.Duration
	cost   int
	log    *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	accounts map[string]*account // by lower-cased email
	items    map[string][]model.Item
}

func New(opt Options) *Server {
	if opt.TokenTTL <= 0 {
		opt.TokenTTL = time.Hour
	}
	if opt.BcryptCost == 0 {
		opt.BcryptCost = bcrypt.DefaultCost
	}
	if opt.Secret == "" {
		opt.Secret = uuid.NewString()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return &Server{
		secret:   []byte(opt.Secret),
		ttl:      opt.TokenTTL,
		cost:     opt.BcryptCost,
		log:      opt.Logger,
		now:      time.Now,
		accounts: map[string]*account{},
		items:    map[string][]model.Item{},
	}
}

// Handler mounts the API under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.registerHandler)
		r.Post("/auth/login", s.loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/items", s.listItemsHandler)
			r.Post("/items", s.createItemHandler)
			r.Put("/items/{id}", s.updateItemHandler)
			r.Delete("/items/{id}", s.deleteItemHandler)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// firstError flattens validation errors into one message.
func firstError(errs form.Errors) string {
	return errs.Get(errs.Fields()[0])
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := form.ValidateRegister(req); !errs.OK() {
		writeError(w, http.StatusBadRequest, firstError(errs))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	key := strings.ToLower(strings.TrimSpace(req.Email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[key]; ok {
		writeError(w, http.StatusConflict, "Email is already registered")
		return
	}
	acc := &account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        key,
		PasswordHash: hash,
	}
	s.accounts[key] = acc
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered",
		"user":    model.User{ID: model.ItemID(acc.ID), Name: acc.Name, Email: acc.Email},
	})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	acc := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.issueToken(acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate access token")
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResult{
		Token: token,
		User:  &model.User{ID: model.ItemID(acc.ID), Name: acc.Name, Email: acc.Email},
	})
}
