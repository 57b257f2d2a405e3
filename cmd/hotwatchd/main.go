// Command hotwatchd watches a configured set of files and serves reload
// events over WebSocket, with health and Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/thejerf/suture/v4"

	"hotwatch/internal/api"
	"hotwatch/internal/config"
	"hotwatch/internal/event"
	"hotwatch/internal/hotload"
	"hotwatch/internal/logging"
	"hotwatch/internal/metrics"
	"hotwatch/internal/reload"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("hotwatchd", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to the settings file")
	listen := flags.String("listen", "", "listen address override")
	logLevel := flags.String("log-level", "", "minimum log level: debug, info, warning, error")
	waitTimeout := flags.Duration("wait-timeout", 0, "notification wait timeout override")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := applyOverrides(&settings, flags, *listen, *logLevel, *waitTimeout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logging.NewLogger(settings.LogLevel)

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.New(registry)
	bus := event.NewBus[hotload.ReloadEvent](128)
	defer bus.Close()

	engine := hotload.New(hotload.Options{
		Logger:      logger,
		Metrics:     engineMetrics,
		Bus:         bus,
		WaitTimeout: settings.WaitTimeout,
	})
	defer engine.Stop()

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, api.Deps{
		Engine:  engine,
		Bus:     bus,
		Logger:  logger,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	server := &http.Server{
		Addr:              settings.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	supervisor := suture.New("hotwatchd", suture.Spec{
		EventHook: func(supervisorEvent suture.Event) {
			logger.Warn("supervisor event", map[string]string{
				"event": supervisorEvent.String(),
			})
		},
	})
	supervisor.Add(&engineService{
		engine:   engine,
		register: registerWatchers(engine, logger, *configPath, settings.Watch),
		logger:   logger,
	})
	supervisor.Add(&httpService{server: server, logger: logger})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("hotwatchd starting", map[string]string{
		"listen":  settings.Listen,
		"watches": fmt.Sprintf("%d", len(settings.Watch)),
	})
	if err := supervisor.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("supervisor stopped", map[string]string{
			"error": err.Error(),
		})
		return 1
	}
	logger.Info("hotwatchd stopped", nil)
	return 0
}

func applyOverrides(settings *config.Settings, flags *pflag.FlagSet, listen, logLevel string, waitTimeout time.Duration) error {
	if flags.Changed("listen") {
		settings.Listen = listen
	}
	if flags.Changed("log-level") {
		level, ok := logging.ParseLevel(logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		settings.LogLevel = level
	}
	if flags.Changed("wait-timeout") {
		if waitTimeout <= 0 {
			return fmt.Errorf("wait timeout must be positive, got %v", waitTimeout)
		}
		settings.WaitTimeout = waitTimeout
	}
	return nil
}

// registerWatchers returns the registration step the engine service runs
// after every (re)initialization: one logging watcher per configured path,
// plus a settings watcher that hot-applies the log level.
func registerWatchers(engine *hotload.Engine, logger *logging.Logger, configPath string, watch []string) func() error {
	return func() error {
		for _, path := range watch {
			watched := path
			watcher := reload.Func(watched, func() {
				logger.Info("watched file changed", map[string]string{
					"path": watched,
				})
			})
			if err := engine.Register(watcher, hotload.RegistryOwned); err != nil {
				return fmt.Errorf("watch %s: %w", watched, err)
			}
		}

		if configPath == "" {
			return nil
		}
		settingsWatcher, err := reload.NewConfigFile(configPath, func(next config.LiveSettings) {
			level, ok := logging.ParseLevel(next.LogLevel)
			if !ok {
				return
			}
			if logger.MinLevel() != level {
				logger.SetMinLevel(level)
				logger.Info("log level changed", map[string]string{
					"level": string(level),
				})
			}
		}, logger)
		if err != nil {
			return fmt.Errorf("watch settings %s: %w", configPath, err)
		}
		if err := engine.Register(settingsWatcher, hotload.RegistryOwned); err != nil {
			return fmt.Errorf("watch settings %s: %w", configPath, err)
		}
		return nil
	}
}
