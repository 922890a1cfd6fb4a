package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bootkit/internal/environment"
	"bootkit/internal/httpapi"
	"bootkit/internal/notify"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the environment admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(addr) == "" {
				addr = a.cfg.HTTP.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :8080 (env BOOTKIT_ADDR)")
	return cmd
}

// serve runs the admin API until ctx is done. ready, when set, receives the
// bound address once the listener is open.
func (a *app) serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	httpapi.SetLogger(a.log)
	httpapi.SetBaseContext(ctx)
	defer httpapi.SetBaseContext(nil)
	cors := a.cfg.HTTP.CORS
	httpapi.SetCORSOptions(cors.Enabled, cors.AllowedOrigins, cors.AllowedMethods, cors.AllowedHeaders, cors.MaxAgeSeconds)
	if lvl := strings.ToLower(a.cfg.Log.Level); lvl == "debug" || lvl == "info" {
		httpapi.SetLogLevel(lvl)
	} else {
		httpapi.SetLogLevel("error")
	}

	observers := notify.NewObserverManager()
	defer observers.Dispose()
	notify.ObserveFrom(observers, environment.Changed, a.store, func(c environment.Change) {
		a.log.Info().Str("previous", c.Previous).Str("current", c.Current).Msg("environment changed")
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(httpapi.NewEnvironmentService(a.mgr)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", ln.Addr().String()).Str("suite", a.cfg.Suite).Msg("bootkit admin API listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	a.log.Info().Msg("bootkit admin API stopped")
	return nil
}
