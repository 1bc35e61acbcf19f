package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"github.com/merrow/brim/internal/control"
	"github.com/merrow/brim/internal/discovery"
	"github.com/merrow/brim/internal/logging"
	"github.com/merrow/brim/internal/prefs"
	"github.com/merrow/brim/internal/version"
	"go.uber.org/zap"
)

// Config holds the emulator configuration
type Config struct {
	Host     string
	Port     int    // 0 picks a free port
	Name     string // Instance name for the greeting and mDNS announcement
	Profile  string // Profile name reported in the greeting
	Announce bool   // Register the control endpoint via mDNS
	LogLevel string
}

// Server emulates the control endpoint of a running brim instance.
// Settings live in an in-memory store and reset on restart.
type Server struct {
	config   *Config
	store    *prefs.MemoryStore
	upgrader websocket.Upgrader

	listener   net.Listener
	httpServer *http.Server
	announcer  *zeroconf.Server

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
	cleared     []control.ClearDataPayload
}

// New creates a new emulator instance
func New(config *Config) (*Server, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if config.Name == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "brim-emu"
		}
		config.Name = hostname
	}
	if config.Profile == "" {
		config.Profile = "default"
	}

	return &Server{
		config:      config,
		store:       prefs.NewMemoryStore(),
		activeConns: make(map[string]*websocket.Conn),
	}, nil
}

// Start begins listening and serving in the background.
// It returns once the listener is bound; use Addr to learn the
// actual address when Config.Port is 0.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc(control.Path, s.handleControl)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Starting brim control emulator",
		zap.String("addr", listener.Addr().String()),
		zap.String("name", s.config.Name),
		zap.String("profile", s.config.Profile),
		zap.String("log_level", s.config.LogLevel),
	)

	if s.config.Announce {
		port := listener.Addr().(*net.TCPAddr).Port
		announcer, err := discovery.Announce(s.config.Name, port, version.Version, s.config.Profile)
		if err != nil {
			// Keep serving; discovery just won't find us
			logging.Warn("mDNS announcement failed", zap.Error(err))
		} else {
			s.announcer = announcer
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Run starts the emulator and blocks until a shutdown signal arrives
func (s *Server) Run() error {
	if err := s.Start(); err != nil {
		return err
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logging.Info("Shutdown signal received, stopping emulator...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Addr returns the address the emulator is listening on, or empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Store exposes the emulator's settings store for inspection
func (s *Server) Store() *prefs.MemoryStore {
	return s.store
}

// ClearedRequests returns the clear-data requests received so far
func (s *Server) ClearedRequests() []control.ClearDataPayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := make([]control.ClearDataPayload, len(s.cleared))
	copy(cleared, s.cleared)
	return cleared
}

// GetActiveConnections returns the number of active control connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

// Shutdown gracefully shuts down the emulator
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down emulator...")

	// Withdraw the mDNS announcement first so scanners stop finding us
	if s.announcer != nil {
		s.announcer.Shutdown()
		s.announcer = nil
	}

	// Stop accepting new connections
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			logging.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}

	// Close all active control connections
	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), deadline)
		_ = conn.Close()
	}
	s.mu.Unlock()

	// Wait for all goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	// Sync logger
	logging.Sync()

	return nil
}

func (s *Server) trackConn(remoteAddr string, conn *websocket.Conn) {
	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()
}

func (s *Server) untrackConn(remoteAddr string) {
	s.mu.Lock()
	delete(s.activeConns, remoteAddr)
	s.mu.Unlock()
}
