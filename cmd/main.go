package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "timeguard/docs"
	"timeguard/internal/config"
	"timeguard/internal/guard"
	"timeguard/internal/handlers"
	"timeguard/internal/logger"
	"timeguard/internal/notify"
	"timeguard/internal/repository"
	"timeguard/internal/repository/db"
	"timeguard/internal/server"
	"timeguard/internal/service"
	"timeguard/internal/signals"
	"timeguard/internal/watch"

	"github.com/rcrowley/go-metrics"
)

const shutdownTimeout = 10 * time.Second

// @title                       timeguard API
// @version                     1.0
// @description                 Time-change detection and notification gating daemon.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml and TIMEGUARD_* overrides
	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG"))
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.Log.Level)
	log.Debugw("config loaded", "config", cfg.String())

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	goRun := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	repos := repository.NewRepository(conn)
	registry := metrics.NewRegistry()
	bus := signals.NewBus()

	// delivery: gate -> dispatcher -> websocket hub
	hub := notify.NewHub(log)
	dispatcher := notify.NewDispatcher(log, cfg.Notify.QueueSize, registry)
	dispatcher.Subscribe(hub)
	goRun(func() { dispatcher.Run(ctx) })

	// decision observers
	recorder := service.NewDecisionRecorder(repos.DecisionRepo, log, cfg.DB.RecorderQueue, registry)
	goRun(func() { recorder.Run(ctx) })

	engine := guard.NewEngine(bus, dispatcher, guard.Options{
		Tracer:         logger.NewTracer(log),
		LoggingEnabled: cfg.Log.GateTrace,
		Recorders:      []guard.Recorder{service.NewStatsRecorder(registry), recorder},
	})
	if err := engine.Start(); err != nil {
		log.Fatalw("failed to start guard engine", "err", err)
	}

	// host signal producers
	watchers := buildWatchers(cfg, bus, log)
	goRun(func() {
		if err := watchers.Run(ctx); err != nil {
			log.Errorw("watcher stopped", "err", err)
		}
	})

	services := service.NewService(service.Deps{
		Repos:     repos,
		Engine:    engine,
		Publisher: bus,
		Metrics:   registry,
		Clients:   hub,
		Auth: service.AuthOptions{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
	})
	apiHandler := handlers.NewHandler(services, hub, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP.Port, apiHandler, log)
	log.Infow("timeguard started", "port", cfg.HTTP.Port, "display", cfg.Display.Enabled, "timezone", cfg.Timezone.Enabled)

	// graceful shutdown
	waitForShutdown(srv, hub, log)

	if err := engine.Close(); err != nil {
		log.Errorw("guard engine close", "err", err)
	}
	cancel()
	bus.Close()
	wg.Wait()
}

// buildWatchers assembles the enabled host signal producers.
func buildWatchers(cfg *config.Config, pub signals.Publisher, log *logger.Logger) watch.Group {
	group := watch.Group{
		watch.NewClockWatcher(pub, log, watch.ClockJumpOptions{
			Interval:  cfg.Clock.Interval,
			Tolerance: cfg.Clock.Tolerance,
		}),
	}
	if cfg.Timezone.Enabled {
		group = append(group, watch.NewTimezoneWatcher(pub, log, cfg.Timezone.LocaltimePath, cfg.Timezone.TimezonePath))
	}
	if cfg.Display.Enabled {
		connect := watch.X11Connector(cfg.Display.Name, cfg.Display.WatchClass, cfg.Display.Lockers)
		group = append(group, watch.NewDisplayWatcher(pub, log, connect, watch.DisplayOptions{
			Interval:        cfg.Display.Interval,
			TrackVisibility: cfg.Display.WatchClass != "",
		}))
	}
	return group
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until a termination signal, then closes channel
// clients and drains the HTTP server.
func waitForShutdown(srv *server.Server, hub *notify.Hub, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// hijacked websocket connections are not tracked by Shutdown
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
