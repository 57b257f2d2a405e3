package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"hotwatch/internal/hotload"
	"hotwatch/internal/logging"
)

const engineCheckInterval = time.Second

// engineService runs the hotload engine under the supervisor. Each Serve
// starts from a clean slate: Init re-arms the engine (also after a
// fail-stop), the registration step rebuilds the watch set, then Run
// starts the worker. If the engine goes idle on its own the service
// returns an error so the supervisor restarts it.
type engineService struct {
	engine   *hotload.Engine
	register func() error
	logger   *logging.Logger
}

func (service *engineService) Serve(ctx context.Context) error {
	if err := service.engine.Init(); err != nil {
		return err
	}
	if err := service.register(); err != nil {
		service.engine.Stop()
		return err
	}
	if err := service.engine.Run(); err != nil {
		service.engine.Stop()
		return err
	}

	ticker := time.NewTicker(engineCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			service.engine.Stop()
			return ctx.Err()
		case <-ticker.C:
			if service.engine.Stats().State != "running" {
				return errors.New("engine stopped unexpectedly")
			}
		}
	}
}

func (service *engineService) String() string { return "engine" }

type httpService struct {
	server *http.Server
	logger *logging.Logger
}

func (service *httpService) Serve(ctx context.Context) error {
	served := make(chan struct{})
	defer close(served)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = service.server.Shutdown(shutdownCtx)
		case <-served:
		}
	}()

	service.logger.Info("http listening", map[string]string{
		"addr": service.server.Addr,
	})
	err := service.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return ctx.Err()
	}
	return err
}

func (service *httpService) String() string { return "http" }
