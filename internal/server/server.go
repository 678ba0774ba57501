// Package server exposes the workspace commands over a local JSON HTTP endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/metaws/metaws/internal/commands"
	"github.com/metaws/metaws/internal/logging"
	"github.com/metaws/metaws/pkg/metaws"
)

// RequestIDHeader carries the per-request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

type contextKey struct{}

// RequestIDFromContext returns the request identifier stored by the server, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Server is the HTTP transport adapter for the command dispatcher.
// Browser pages may only invoke commands from AllowedOrigins, and every
// invocation must be sent as application/json.
type Server struct {
	Dispatcher     *commands.Dispatcher
	Logger         metaws.Logger
	Workspace      string
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func (s Server) logger() metaws.Logger {
	if s.Logger == nil {
		return logging.NewNullLogger()
	}
	return s.Logger
}

func (s Server) maxBodyBytes() int64 {
	if s.MaxBodyBytes <= 0 {
		return metaws.DefaultMaxBodyBytes
	}
	return s.MaxBodyBytes
}

// Handler returns the routes wrapped with request-id handling.
func (s Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"time":      time.Now().UTC().Format(time.RFC3339Nano),
			"workspace": s.Workspace,
		})
	})

	mux.HandleFunc("GET /commands", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "commands": commands.Names()})
	})

	mux.HandleFunc("POST /invoke/{command}", s.handleInvoke)
	mux.HandleFunc("OPTIONS /invoke/{command}", s.handlePreflight)

	return s.withRequestID(mux)
}

func (s Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		s.logger().Verbose("[%s] %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))
	})
}

func (s Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	id := RequestIDFromContext(r.Context())
	log := s.logger()

	if s.Dispatcher == nil {
		writeJSON(w, http.StatusInternalServerError, commands.Response{Error: "server misconfigured: dispatcher is nil"})
		return
	}

	if !s.allowOrigin(w, r) {
		log.Error("[%s] rejected origin %q", id, r.Header.Get("Origin"))
		writeJSON(w, http.StatusForbidden, commands.Response{Error: "origin not allowed"})
		return
	}

	name := r.PathValue("command")
	if !commands.IsKnown(name) {
		writeJSON(w, http.StatusNotFound, commands.Response{Error: fmt.Sprintf("unknown command: %q", name)})
		return
	}

	if !isJSONContentType(r.Header.Get("Content-Type")) {
		writeJSON(w, http.StatusUnsupportedMediaType, commands.Response{Error: "content type must be application/json"})
		return
	}

	body, err := readBody(w, r, s.maxBodyBytes())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, commands.Response{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, commands.Response{Error: err.Error()})
		return
	}

	result, err := s.Dispatcher.Call(name, body)
	switch {
	case errors.Is(err, commands.ErrInvalidArguments):
		writeJSON(w, http.StatusBadRequest, commands.Response{Error: err.Error()})
	case err != nil:
		msg := commands.Describe(err)
		log.Error("[%s] %s: %s", id, name, msg)
		writeJSON(w, http.StatusOK, commands.Response{Error: msg})
	default:
		writeJSON(w, http.StatusOK, commands.Response{OK: true, Result: result})
	}
}

func (s Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Origin") == "" || !s.allowOrigin(w, r) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
	w.Header().Set("Access-Control-Max-Age", "600")
	w.WriteHeader(http.StatusNoContent)
}

// allowOrigin reports whether r may proceed and sets the CORS response headers
// for an allowed browser origin. Requests without an Origin header are not
// from a browser page and are allowed.
func (s Server) allowOrigin(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.AllowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			w.Header().Add("Vary", "Origin")
			return true
		}
	}
	return false
}

func isJSONContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	return err == nil && mediaType == "application/json"
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) (json.RawMessage, error) {
	defer r.Body.Close()

	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed reading request body: %w", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		b = []byte("{}")
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("invalid json")
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	b, err := json.Marshal(v)
	if err != nil {
		_, _ = w.Write([]byte(`{"ok":false,"error":"failed to marshal json"}`))
		return
	}
	_, _ = w.Write(append(b, '\n'))
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting up to metaws.DefaultShutdownTimeout for in-flight requests.
func (s Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log := s.logger()
	log.Info("Listening on http://%s", ln.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		log.Verbose("Shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metaws.DefaultShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
