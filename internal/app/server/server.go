// Package server hosts the HTTP API over a SQLite store and a feed hub.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/louisbranch/splittab/internal/api"
	"github.com/louisbranch/splittab/internal/feed"
	"github.com/louisbranch/splittab/internal/split/service"
	"github.com/louisbranch/splittab/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Config holds everything the server needs to start.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// Server hosts the HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	hub        *feed.Hub
}

// New opens the store and wires the API onto a listener.
func New(cfg Config) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	hub := feed.NewHub()
	svc := service.New(store, hub)
	handler := api.New(svc, hub, []byte(cfg.JWTSecret)).Handler()

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: handler},
		store:      store,
		hub:        hub,
	}, nil
}

// Run creates and serves a server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve starts the HTTP server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Printf("server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	defer func() {
		s.hub.Close()
		if err := s.store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}
