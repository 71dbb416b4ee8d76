// Package server serves a generated site over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

const (
	DefaultAddr            = ":8080"
	defaultShutdownTimeout = 5 * time.Second
)

var errOutputDirRequired = errors.New("server: output directory is required")

// Config controls the static server.
type Config struct {
	OutputDir       string
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          interfaces.Logger
}

// Server serves the files of an output directory. Extensionless paths
// resolve to the sibling ".html" file when it exists.
type Server struct {
	cfg    Config
	engine *gin.Engine
	logger interfaces.Logger
}

// New validates cfg and builds the gin engine.
func New(cfg Config) (*Server, error) {
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	if cfg.OutputDir == "" {
		return nil, errOutputDirRequired
	}
	if info, err := os.Stat(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("server: output directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("server: output directory %s is not a directory", cfg.OutputDir)
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), HTMLResolver(cfg.OutputDir))
	engine.NoRoute(gin.WrapH(http.FileServer(gin.Dir(cfg.OutputDir, false))))

	return &Server{cfg: cfg, engine: engine, logger: logger}, nil
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("server.started", "addr", ln.Addr().String(), "output_dir", s.cfg.OutputDir)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("server.stopping", "addr", ln.Addr().String())
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

// HTMLResolver rewrites requests for extensionless, non-directory paths
// to "<path>.html" when that file exists under root.
func HTMLResolver(root string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if target, ok := resolveHTML(root, c.Request.URL.Path); ok {
			c.Request.URL.Path = target
			if c.Request.URL.RawPath != "" {
				c.Request.URL.RawPath += ".html"
			}
		}
		c.Next()
	}
}

// resolveHTML works on the decoded request path.
func resolveHTML(root, requestPath string) (string, bool) {
	if requestPath == "" || strings.HasSuffix(requestPath, "/") {
		return "", false
	}
	last := requestPath[strings.LastIndex(requestPath, "/")+1:]
	if strings.Contains(last, ".") {
		return "", false
	}

	candidate := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(requestPath, "/"))+".html")
	rel, err := filepath.Rel(root, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", false
	}
	return requestPath + ".html", true
}

func requestLogger(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration", time.Since(start),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("server.request", args...)
			return
		}
		logger.Debug("server.request", args...)
	}
}
