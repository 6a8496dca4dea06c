package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "CandlePull/internal/domain/repository"
	"CandlePull/internal/usecase"
	"CandlePull/pkg/config"
	xhttp "CandlePull/pkg/http"
	applogger "CandlePull/pkg/logger"
)

// App encapsulates the application lifecycle: storage init, streaming
// supervisor, HTTP server, and graceful shutdown.
type App struct {
	cfg        *config.Config
	store      domrepo.BarStore
	supervisor *usecase.Supervisor
	publisher  domrepo.BarPublisher // optional
	handler    xhttp.Handler
	httpServer *xhttp.Server
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	store domrepo.BarStore,
	supervisor *usecase.Supervisor,
	publisher domrepo.BarPublisher,
	handler xhttp.Handler,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:        cfg,
		store:      store,
		supervisor: supervisor,
		publisher:  publisher,
		handler:    handler,
		l:          l,
	}
}

// Run starts ingestion and the API server, then blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.store.Init(ctx); err != nil {
		return err
	}
	a.l.Info("store ready", applogger.String("path", a.cfg.Store.Path))

	if err := a.supervisor.Start(ctx); err != nil {
		return err
	}
	a.l.Info("streaming supervisor started",
		applogger.String("transport", a.cfg.Binance.Transport),
		applogger.Strings("symbols", a.cfg.SymbolsUpper()),
	)

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	if err := a.supervisor.Stop(); err != nil {
		a.l.Warn("supervisor stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if err := a.store.Close(); err != nil {
		a.l.Warn("store close error", applogger.Error(err))
	}

	a.l.Info("shutdown complete")
	return nil
}
