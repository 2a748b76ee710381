package demoserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/raysh454/stereocheck/internal/logging"
)

// DemoServer serves the car stereo page, its faceplate and placeholder audio.
// The page version can be switched on the fly to simulate a regression.
type DemoServer struct {
	cfg       Config
	faceplate []byte
	logger    logging.Logger

	mu      sync.RWMutex
	version int
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) (*DemoServer, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.InitialVersion == 0 {
		cfg.InitialVersion = VersionComplete
	}
	if _, err := PageHTML(cfg.InitialVersion); err != nil {
		return nil, err
	}

	img, err := Faceplate()
	if err != nil {
		return nil, fmt.Errorf("rendering faceplate: %w", err)
	}

	return &DemoServer{
		cfg:       cfg,
		faceplate: img,
		logger:    logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		version:   cfg.InitialVersion,
	}, nil
}

// Handler returns the router. HEAD requests are answered by the GET routes.
func (s *DemoServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.GetHead)

	r.Get("/", s.pageHandler)
	r.Get("/index.html", s.pageHandler)
	r.Get("/assets/alpine_faceplate.png", s.faceplateHandler)
	r.Get("/audio/{track}", s.audioHandler)

	// Version switching
	r.Get("/demo/version", s.getVersionHandler)
	r.Post("/demo/version", s.setVersionHandler)
	return r
}

// Start listens on the configured port until ctx is done.
func (s *DemoServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("demo server listening", logging.Field{Key: "addr", Value: srv.Addr}, logging.Field{Key: "version", Value: s.Version()})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Version returns the page version being served.
func (s *DemoServer) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetVersion switches the page version.
func (s *DemoServer) SetVersion(version int) error {
	if _, err := PageHTML(version); err != nil {
		return err
	}
	s.mu.Lock()
	s.version = version
	s.mu.Unlock()
	s.logger.Info("page version switched", logging.Field{Key: "version", Value: version})
	return nil
}

func (s *DemoServer) pageHandler(w http.ResponseWriter, r *http.Request) {
	html, err := PageHTML(s.Version())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(html)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *DemoServer) faceplateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(s.faceplate)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.faceplate)
}

func (s *DemoServer) audioHandler(w http.ResponseWriter, r *http.Request) {
	track := chi.URLParam(r, "track")
	if !trackServed(s.Version(), track) {
		http.NotFound(w, r)
		return
	}
	body := PlaceholderAudio(track)
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *DemoServer) getVersionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"version":   s.Version(),
		"available": []int{VersionComplete, VersionRegressed},
	})
}

func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil {
		http.Error(w, "Invalid version number", http.StatusBadRequest)
		return
	}
	if err := s.SetVersion(version); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"version": version,
	})
}

// WriteAppRoot lays the application out under dir the way it is deployed:
// index.html, assets/alpine_faceplate.png and audio/track*.mp3.
func WriteAppRoot(dir string, version int) error {
	html, err := PageHTML(version)
	if err != nil {
		return err
	}
	img, err := Faceplate()
	if err != nil {
		return fmt.Errorf("rendering faceplate: %w", err)
	}

	files := map[string][]byte{
		"index.html":                  []byte(html),
		"assets/alpine_faceplate.png": img,
	}
	for _, track := range Tracks {
		if trackServed(version, track) {
			files["audio/"+track] = PlaceholderAudio(track)
		}
	}

	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
