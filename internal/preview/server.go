// Package preview serves a live-reloading HTML rendition of the document
// currently open in the viewer. A browser tab polls a version counter and
// re-fetches the rendered markdown when it advances; an fsnotify watcher
// bumps the counter when the file changes on disk.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Server is the preview HTTP server plus its file watcher.
type Server struct {
	addr     string
	debounce time.Duration
	logger   *slog.Logger

	version atomic.Int64

	// mu guards path, title, and watcher: SetDocument is called from the
	// TUI event loop while Run installs the watcher on its own goroutine.
	mu      sync.Mutex
	path    string // absolute path of the document on disk
	title   string
	watcher *watcher
}

// New creates a preview server listening on addr.
func New(addr string, debounce time.Duration, logger *slog.Logger) *Server {
	return &Server{
		addr:     addr,
		debounce: debounce,
		logger:   logger,
	}
}

// URL returns the address a browser should open.
func (s *Server) URL() string {
	return "http://" + s.addr + "/"
}

// SetDocument switches the previewed document and re-points the watcher.
func (s *Server) SetDocument(path, title string) error {
	s.mu.Lock()
	s.path = path
	s.title = title
	w := s.watcher
	s.mu.Unlock()

	s.version.Add(1)

	if w != nil {
		if err := w.watch(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	return nil
}

// Version returns the current reload counter.
func (s *Server) Version() int64 {
	return s.version.Load()
}

func (s *Server) current() (path, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path, s.title
}

// bump advances the reload counter; the watcher calls this after its
// debounce window closes.
func (s *Server) bump() {
	s.version.Add(1)
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/doc", s.handleDoc)
	r.Get("/version", s.handleVersion)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, nil); err != nil {
		s.logger.Error("preview: render page", slog.String("error", err.Error()))
	}
}

func (s *Server) handleDoc(w http.ResponseWriter, _ *http.Request) {
	path, title := s.current()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if path == "" {
		fmt.Fprint(w, "<p><em>No document selected.</em></p>")
		return
	}

	src, err := readDocument(path)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "<p><em>Cannot read %s.</em></p>", title)
		s.logger.Warn("preview: read failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	frag, err := renderMarkdown(src)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "<p><em>Render failed.</em></p>")
		s.logger.Warn("preview: render failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	fmt.Fprint(w, string(frag))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(map[string]int64{"version": s.version.Load()}); err != nil {
		s.logger.Error("preview: encode version", slog.String("error", err.Error()))
	}
}

// Run serves HTTP and the watcher until ctx is cancelled. It returns the
// bind error immediately so the caller can surface a port collision.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("preview listen %s: %w", s.addr, err)
	}

	w, err := newWatcher(s.debounce, s.bump, s.logger)
	if err != nil {
		ln.Close()
		return fmt.Errorf("preview watcher: %w", err)
	}

	s.mu.Lock()
	s.watcher = w
	path := s.path
	s.mu.Unlock()

	// Re-point the watcher if a document was set before Run.
	if path != "" {
		if werr := w.watch(path); werr != nil {
			s.logger.Warn("preview: initial watch failed", slog.String("error", werr.Error()))
		}
	}

	httpServer := &http.Server{Handler: s.router()}

	s.logger.Info("preview: started", slog.String("url", s.URL()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.run(gCtx)
	})

	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("preview: shutdown", slog.String("error", err.Error()))
		}
		return nil
	})

	err = g.Wait()
	s.logger.Info("preview: stopped")
	return err
}
