// Package assetserver serves local files referenced by layers to the map
// view over loopback HTTP.
package assetserver

import (
	"bytes"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/tiff"
)

const prefix = "/assets/"

// Server manages the asset HTTP server
type Server struct {
	logger  logrus.FieldLogger
	baseURL string

	mu     sync.RWMutex
	tokens map[string]string // token -> absolute path
	byPath map[string]string // absolute path -> token
}

// NewServer creates a new asset server instance
func NewServer(logger logrus.FieldLogger) *Server {
	return &Server{
		logger: logger,
		tokens: make(map[string]string),
		byPath: make(map[string]string),
	}
}

// BaseURL returns the server URL, empty until Start succeeds
func (s *Server) BaseURL() string {
	return s.baseURL
}

// corsMiddleware adds CORS headers to allow requests from Wails frontend
// On macOS/Linux, Wails uses wails://wails origin which requires CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Range")

		// Handle preflight OPTIONS request
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the CORS-wrapped routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Get(prefix+"{token}/{name}", s.handleAsset)
	return r
}

// Start starts a local HTTP server on a random loopback port
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to start asset server: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	s.baseURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	s.logger.Infof("Asset server started on %s", s.baseURL)

	server := &http.Server{
		Handler: s.Handler(),
	}

	go func() {
		if err := server.Serve(listener); err != nil {
			s.logger.Warnf("Asset server stopped: %v", err)
		}
	}()

	return nil
}

// Register makes a local file reachable and returns its URL path,
// relative to BaseURL. Registering the same file twice returns the same path.
func (s *Server) Register(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.byPath[abs]
	if !ok {
		token = uuid.NewString()
		s.tokens[token] = abs
		s.byPath[abs] = token
		s.logger.WithField("token", token).Debugf("Registered asset %s", abs)
	}
	return prefix + token + "/" + url.PathEscape(servedName(abs)), nil
}

// URL is Register joined with BaseURL
func (s *Server) URL(path string) (string, error) {
	rel, err := s.Register(path)
	if err != nil {
		return "", err
	}
	return s.baseURL + rel, nil
}

// servedName is the name the file is served under; GeoTIFFs go out as PNG.
func servedName(path string) string {
	name := filepath.Base(path)
	if isTIFF(name) {
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	}
	return name
}

func isTIFF(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".tif" || ext == ".tiff"
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	s.mu.RLock()
	path, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if isTIFF(path) {
		s.serveTIFF(w, r, path)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		s.logger.Errorf("Failed to open asset %s: %v", path, err)
		http.Error(w, "asset unavailable", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "asset unavailable", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
}

// serveTIFF decodes a GeoTIFF and re-encodes it as PNG so the webview can draw it
func (s *Server) serveTIFF(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Errorf("Failed to open raster %s: %v", path, err)
		http.Error(w, "asset unavailable", http.StatusNotFound)
		return
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		s.logger.Errorf("Failed to decode raster %s: %v", path, err)
		http.Error(w, "raster cannot be decoded", http.StatusUnprocessableEntity)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.logger.Errorf("Failed to encode raster %s: %v", path, err)
		http.Error(w, "raster cannot be encoded", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}
