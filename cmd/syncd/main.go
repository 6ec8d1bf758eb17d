// Command syncd is the telemetry sync daemon: it runs the background sync
// scheduler and exposes a small ops API for manual triggers and inspection.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stridewell/server/pkg/bootstrap"
	"github.com/stridewell/server/pkg/infrastructure/sentry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.NewService(ctx, "syncd")
	if err != nil {
		// logger may not exist yet; bootstrap logs details itself
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer svc.Close()
	defer sentry.RecoverAndCapture(svc.Logger)

	svc.Scheduler.Start(ctx)
	defer svc.Scheduler.Stop()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           newRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			svc.Logger.Error("Server shutdown failed", "error", err)
		}
	}()

	svc.Logger.Info("syncd listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		svc.Logger.Error("Server failed", "error", err)
		sentry.CaptureException(err, nil, svc.Logger)
		os.Exit(1)
	}
	svc.Logger.Info("syncd stopped")
}
