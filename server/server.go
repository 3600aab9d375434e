package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cyp0633/libcaldate/storage"
)

const (
	// HTTP headers
	headerContentType = "Content-Type"
	headerETag        = "ETag"
	headerAllow       = "Allow"

	// MIME types
	mimeTypeCalendar = "text/calendar; charset=utf-8"
	mimeTypeXCal     = "application/calendar+xml; charset=utf-8"

	allowedMethods = "GET, HEAD"
)

// stripPrefix removes the baseURI prefix from the path
func stripPrefix(path, baseURI string) string {
	return strings.TrimPrefix(path, strings.TrimSuffix(baseURI, "/"))
}

// Server serves stored schedules as a read-only iCalendar feed
type Server struct {
	storage  storage.Storage
	baseURI  string
	handlers map[string]http.HandlerFunc
	logger   *slog.Logger

	realm string
	users map[string]string
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger for the server
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBasicAuth requires HTTP Basic credentials matching users
// (username to password).
func WithBasicAuth(realm string, users map[string]string) Option {
	return func(s *Server) {
		s.realm = realm
		s.users = users
	}
}

// New creates a feed server for store mounted at baseURI
func New(store storage.Storage, baseURI string, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	s := &Server{
		storage:  store,
		baseURI:  baseURI,
		handlers: make(map[string]http.HandlerFunc),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.users != nil && s.realm == "" {
		s.realm = "libcaldate"
	}

	// Register method handlers
	s.handlers[http.MethodGet] = s.handleGet
	s.handlers[http.MethodHead] = s.handleGet

	return s, nil
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := s.handlers[r.Method]
	if !ok {
		w.Header().Set(headerAllow, allowedMethods)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.users != nil && !s.checkAuth(w, r) {
		return
	}

	handler(w, r)
}

// checkAuth enforces Basic Authentication
func (s *Server) checkAuth(w http.ResponseWriter, r *http.Request) bool {
	username, password, ok := r.BasicAuth()
	if !ok {
		s.logger.Info("authentication required - no credentials")
		s.requireAuth(w)
		return false
	}

	want, known := s.users[username]
	if !known || subtle.ConstantTimeCompare([]byte(password), []byte(want)) != 1 {
		s.logger.Warn("authentication failed", "user", username)
		s.requireAuth(w)
		return false
	}
	return true
}

// requireAuth sends a 401 Unauthorized response asking for Basic Auth
func (s *Server) requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm="%s"`, s.realm))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// storageError maps a storage error to an HTTP status
func (s *Server) storageError(w http.ResponseWriter, err error) {
	var se *storage.Error
	switch {
	case errors.As(err, &se) && se.Type == storage.ErrNotFound:
		http.Error(w, "Schedule not found", http.StatusNotFound)
	case errors.As(err, &se) && se.Type == storage.ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("storage failure", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
