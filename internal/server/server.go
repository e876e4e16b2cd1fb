package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelpipe/internal/logging"
)

// Server serves the download directory read-only.
type Server struct {
	dir    string
	bind   string
	logger *slog.Logger
	http   *http.Server
}

// New builds a Server for dir bound to addr.
func New(dir, addr string, logger *slog.Logger) (*Server, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve serve directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("serve directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("serve path %s is not a directory", abs)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		dir:    abs,
		bind:   addr,
		logger: logging.NewComponentLogger(logger, "server"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/downloads/", http.StripPrefix("/downloads/", http.HandlerFunc(s.serveFile)))
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the context is cancelled or the listener
// fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving artifacts",
			logging.String("bind", s.bind),
			logging.String("dir", s.dir),
		)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serveFile hands out one file from the download directory. Only plain files
// directly inside the directory are reachable; anything that resolves
// elsewhere is rejected.
func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := filepath.Base(filepath.Clean("/" + r.URL.Path))
	if name == "/" || name == "." || strings.HasPrefix(name, ".") {
		http.NotFound(w, r)
		return
	}
	full := filepath.Join(s.dir, name)
	if !strings.HasPrefix(full, s.dir+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}
