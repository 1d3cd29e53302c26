package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ytstat/internal/controllers"
	"ytstat/internal/providers"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
)

type App struct {
	WebServer *http.Server
}

func NewApp(
	flags *structures.CliFlags,
	dashboardController *controllers.DashboardController,
	healthController *controllers.HealthController,
	scheduler interfaces.SchedulerInterface,
	blobs interfaces.BlobStoreInterface,
	compressor interfaces.CompressorInterface,
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
) (*App, error) {
	defer compressor.Close()
	defer func() {
		if err := blobs.Close(); err != nil {
			logger.Errorf(providers.TypeStore, "Error while closing baseline store: %s", err)
		}
	}()

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	err := scheduler.Restore()
	if err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	if flags.RunOnce != "" {
		return &App{}, runOnce(flags.RunOnce, scheduler, logger)
	}

	// Inner mux: API routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	instrumentedAPI := providers.AccessLogMiddleware(logger, providers.MetricsMiddleware(metrics, apiMux))

	// Outer mux: infrastructure + instrumented API
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	app := &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s:%d", conf.WebServer.Host, conf.WebServer.Port)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		scheduler.Stop()
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}
	err = scheduler.Persist()
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}

// runOnce runs a single cycle in mode, persists the outcome and reports a
// fatal cycle as an error.
func runOnce(mode string, scheduler interfaces.SchedulerInterface, logger providers.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof(providers.TypeApp, "Running a single %s collection cycle", mode)
	_, cycleErr := scheduler.Collect(ctx, mode)
	if err := scheduler.Persist(); err != nil && cycleErr == nil {
		return err
	}
	if cycleErr != nil {
		return fmt.Errorf("%s cycle: %w", mode, cycleErr)
	}
	return nil
}
