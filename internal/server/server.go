/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package server exposes dashboard pages over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dashboard "github.com/suparena/dashboard"
	"github.com/suparena/dashboard/internal/config"
	"github.com/suparena/dashboard/internal/logger"
	"github.com/suparena/dashboard/internal/metrics"
)

// Server is the HTTP front of a Dashboard.
type Server struct {
	cfg    config.ServerConfig
	engine *gin.Engine
	log    logger.Logger
}

// New builds the router. m may be nil, in which case /metrics is not served.
func New(cfg config.ServerConfig, dash *dashboard.Dashboard, log logger.Logger, m *metrics.Metrics) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(log))
	if m != nil {
		r.Use(Metrics(m))
	}
	r.Use(ErrorHandler(log))

	h := &handlers{dash: dash, log: log}
	r.GET("/health", h.health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		pages := v1.Group("/pages")
		{
			pages.GET("", h.listPages)
			pages.GET("/:name", h.renderPage)
			pages.GET("/:name/export", h.exportPage)
		}
	}

	return &Server{cfg: cfg, engine: r, log: log}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof(ctx, "listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Infof(shutdownCtx, "shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
