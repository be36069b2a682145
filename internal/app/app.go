package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"solar-relay/internal/domain/ports"
	"solar-relay/internal/usecase"
)

// Options controls what the App starts.
type Options struct {
	Schedule        string
	RunOnStart      bool
	ShutdownTimeout time.Duration
	CycleTimeout    time.Duration
}

// App manages the scheduler and the inbound HTTP server.
type App struct {
	cron     *cron.Cron
	runner   usecase.CycleRunner
	server   *http.Server
	logger   ports.Logger
	opts     Options
	cleanups []func(context.Context) error
}

// New constructs an App instance.
func New(runner usecase.CycleRunner, server *http.Server, logger ports.Logger, opts Options) *App {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = 2 * time.Minute
	}
	return &App{
		cron:   cron.New(),
		runner: runner,
		server: server,
		logger: logger,
		opts:   opts,
	}
}

// OnShutdown registers fn to run after the server and scheduler stop.
func (a *App) OnShutdown(fn func(context.Context) error) {
	a.cleanups = append(a.cleanups, fn)
}

// Run starts the scheduler and HTTP server and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.scheduleJob(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, listener)
}

func (a *App) serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "http server starting", "addr", listener.Addr().String())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if a.opts.RunOnStart {
		a.logger.Info(ctx, "running first cycle immediately")
		a.runCycle(ctx, "startup")
	}

	if a.opts.Schedule != "" {
		a.logger.Info(ctx, "starting scheduler", "cron", a.opts.Schedule)
		a.cron.Start()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.opts.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error(shutdownCtx, "http server shutdown failed", "error", err)
	}

	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-shutdownCtx.Done():
	}

	for _, fn := range a.cleanups {
		if err := fn(shutdownCtx); err != nil {
			a.logger.Error(shutdownCtx, "shutdown hook failed", "error", err)
		}
	}
	a.logger.Info(shutdownCtx, "app stopped")
	return runErr
}

func (a *App) scheduleJob() error {
	if a.opts.Schedule == "" {
		return nil
	}
	_, err := a.cron.AddFunc(a.opts.Schedule, func() {
		a.runCycle(context.Background(), "schedule")
	})
	return err
}

func (a *App) runCycle(parent context.Context, trigger string) {
	ctx, cancel := context.WithTimeout(parent, a.opts.CycleTimeout)
	defer cancel()
	if _, err := a.runner.Run(ctx); err != nil {
		a.logger.Error(ctx, "relay cycle not run", "trigger", trigger, "error", err)
	}
}
