// Package cli holds the actions behind the authsuite commands.
package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/handlers"
)

// ServerDependencies holds everything the report server routes to
type ServerDependencies struct {
	ServerConfig config.ServerConfig
	ArtifactsDir string
	RunsHandler  http.Handler
	RunHandler   http.Handler
}

// RunServe serves run history until the process is signalled
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, nil)
}

// StartServer binds the report server and serves it in the background
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/", deps.RunsHandler)
	mux.Handle("/runs/{id}", deps.RunHandler)
	if deps.ArtifactsDir != "" {
		mux.Handle(handlers.ArtifactsPrefix, http.StripPrefix(handlers.ArtifactsPrefix, http.FileServer(http.Dir(deps.ArtifactsDir))))
	}

	addr := fmt.Sprintf(":%s", deps.ServerConfig.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Report server listening on %s", listener.Addr().String())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return listener, server, nil
}

// WaitForShutdown blocks until a signal arrives on shutdown, then stops the
// server. A nil channel listens for SIGINT and SIGTERM.
func WaitForShutdown(server *http.Server, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout is WaitForShutdown with a custom drain timeout
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	log.Printf("Received signal: %v, shutting down report server...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// In-flight requests outlived the timeout
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Println("Report server stopped")
	return nil
}
