// ABOUTME: HTTP server for the HippoLingua audio API
// ABOUTME: Owns the gin router, listener lifecycle and mDNS advertisement
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hippolingua/hippolingua/internal/blob"
	"github.com/hippolingua/hippolingua/internal/discovery"
	"github.com/hippolingua/hippolingua/internal/extract"
	"github.com/hippolingua/hippolingua/internal/logging"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Name           string
	EnableMDNS     bool
	Debug          bool
	RequestTimeout time.Duration
}

// Server serves the audio API
type Server struct {
	config   Config
	serverID string

	source    blob.Source
	extractor *extract.Extractor

	router     *gin.Engine
	httpServer *http.Server

	// mDNS discovery
	mdnsManager *discovery.Manager

	// Control
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a server over an already constructed source and extractor
func New(config Config, source blob.Source, extractor *extract.Extractor) *Server {
	if config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    config,
		serverID:  uuid.New().String(),
		source:    source,
		extractor: extractor,
		stopChan:  make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens and serves until Stop is called or the listener fails
func (s *Server) Start() error {
	log := logging.L()
	log.Info("server starting", slog.String("name", s.config.Name), slog.String("id", s.serverID))

	// Start mDNS advertisement if enabled
	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Warn("failed to start mDNS advertisement", slog.Any("error", err))
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	log.Info("HTTP server listening", slog.String("addr", addr))

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Info("server shutting down")
	case err := <-errChan:
		log.Error("HTTP server error", slog.Any("error", err))
		serverErr = err
	}

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown error", slog.Any("error", err))
	}

	log.Info("server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}
