package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/laneguide/internal/api"
	"github.com/banshee-data/laneguide/internal/db"
	"github.com/banshee-data/laneguide/internal/metrics"
)

func serveCommand(args []string, out io.Writer) error {
	o, err := parseServeFlags(args, out)
	if err != nil {
		return err
	}
	db.DevMode = o.dev

	store, err := db.NewDB(o.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	srv := api.NewServer(store, metrics.New())
	mux := srv.ServeMux()
	if err := store.AttachAdminRoutes(mux); err != nil {
		return fmt.Errorf("attach admin routes: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serveHTTP(ctx, &http.Server{Addr: o.listen, Handler: srv.Handler(mux)})
}

// serveHTTP runs server until ctx is cancelled, then shuts it down.
func serveHTTP(ctx context.Context, server *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return <-errc
}
