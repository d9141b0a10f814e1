// Package api serves learning paths over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eddge/learnengine/internal/doubts"
	"github.com/eddge/learnengine/internal/platform/logger"
	"github.com/eddge/learnengine/internal/progress"
)

// Config holds server settings.
type Config struct {
	Addr         string
	AllowOrigins []string
	// ShutdownTimeout bounds the drain of in-flight requests.
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFromEnv reads EDDGE_ADDR and EDDGE_CORS_ORIGINS (comma separated).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("EDDGE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("EDDGE_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Server is the HTTP front of a progress.Service.
type Server struct {
	progress *progress.Service
	doubts   *doubts.Service // nil when no LLM is configured
	log      *logger.Logger
	cfg      Config
	engine   *gin.Engine
}

// NewServer builds the router. ds may be nil.
func NewServer(ps *progress.Service, ds *doubts.Service, log *logger.Logger, cfg Config) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{progress: ps, doubts: ds, log: log.With("component", "api"), cfg: cfg}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))
	if len(s.cfg.AllowOrigins) > 0 {
		r.Use(CORS(s.cfg.AllowOrigins))
	}

	r.GET("/healthcheck", s.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/topics", s.listTopics)
		api.GET("/progress", s.overview)

		api.GET("/topics/:topicID/path", s.getPath)
		api.DELETE("/topics/:topicID/path", s.resetPath)
		api.GET("/topics/:topicID/path/export", s.exportPath)
		api.GET("/topics/:topicID/history", s.history)
		api.POST("/topics/:topicID/nodes/:nodeID/outcome", s.completeNode)
		api.POST("/paths/import", s.importPath)

		api.GET("/nodes/:nodeID/frames", s.nodeFrames)

		api.POST("/doubts", s.askDoubt)
	}
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

// topicFromNodeID recovers the topic id from a node id of the form
// "{topic}-n{k}".
func topicFromNodeID(nodeID string) string {
	i := strings.LastIndex(nodeID, "-n")
	if i <= 0 {
		return ""
	}
	for _, r := range nodeID[i+2:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	if len(nodeID) == i+2 {
		return ""
	}
	return nodeID[:i]
}
