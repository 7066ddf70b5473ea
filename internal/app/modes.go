package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"solarb/internal/domain"
	"solarb/internal/server"
	"solarb/internal/server/handler"
	"solarb/internal/server/ws"
)

// ServerMode runs the control surface only; the engine starts when an
// operator posts /api/bot/start.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startWorkers(ctx, g, deps)
	a.startHTTPServer(ctx, g, deps)

	// The run loop deliberately outlives request contexts, so shutdown has
	// to stop it explicitly.
	g.Go(func() error {
		<-ctx.Done()
		return deps.Engine.Stop(context.Background())
	})

	return g.Wait()
}

// AutoMode starts the engine immediately from the seeded default
// configuration, plus the control surface when enabled.
func (a *App) AutoMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting auto mode",
		slog.String("config_id", deps.DefaultConfigID),
	)

	cfg, err := deps.ConfigStore.Get(ctx, deps.DefaultConfigID)
	if err != nil {
		return fmt.Errorf("auto mode: load default config: %w", err)
	}
	if err := deps.Engine.Start(ctx, cfg); err != nil {
		return fmt.Errorf("auto mode: start engine: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	a.startWorkers(ctx, g, deps)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	g.Go(func() error {
		<-ctx.Done()
		return deps.Engine.Stop(context.Background())
	})

	return g.Wait()
}

// startWorkers launches the background goroutines shared by both modes:
// notification forwarding and history archiving.
func (a *App) startWorkers(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	if deps.Watcher != nil {
		g.Go(func() error {
			err := deps.Watcher.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if deps.Archiver != nil {
		g.Go(func() error {
			err := deps.Archiver.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
}

// startHTTPServer assembles the handlers, WebSocket hub, and HTTP server and
// adds their goroutines to the errgroup.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.SignalBus, func() domain.BotStatusPayload {
		st := deps.Engine.Status()
		p := domain.BotStatusPayload{
			IsRunning:    st.Running,
			LastScanTime: st.LastScanAt,
		}
		if st.Config != nil {
			p.ConfigID = st.Config.ID
		}
		return p
	}, a.logger)
	g.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
		},
		server.Handlers{
			Health:  handler.NewHealthHandler(a.logger),
			Bot:     handler.NewBotHandler(deps.Engine, deps.ConfigStore, deps.DefaultConfigID, a.logger),
			Configs: handler.NewConfigHandler(deps.ConfigStore, a.logger),
			Records: handler.NewRecordsHandler(deps.OpportunityStore, deps.TradeStore, a.logger),
		},
		hub,
		a.logger,
	)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
