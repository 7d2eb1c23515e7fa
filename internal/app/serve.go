package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/gopforever/ShazbotCards/internal/server"
)

// Serve runs the HTTP analytics server until interrupted.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot serve")
	}
	if closeStore != nil {
		defer closeStore()
	}

	addr := a.Config.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	srv := server.New(store, a.Logger)
	err = srv.Start(ctx, addr, a.Config.Server.ReadHeaderTimeout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.Logger.Info().Msg("analytics server stopped")
	return nil
}
