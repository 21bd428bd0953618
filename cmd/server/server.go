package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/RoGogDBD/canteen/internal/app"
	"github.com/RoGogDBD/canteen/internal/config"
	"github.com/RoGogDBD/canteen/internal/handlers"
	"github.com/RoGogDBD/canteen/internal/telemetry"
)

// @title Canteen Edge API
// @version 1.0
// @description Edge service for the campus canteen mobile app
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr, dsn := config.ParseFlags()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Явно переданные флаги важнее файла конфигурации
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.Server.Host = addr.Host
			cfg.Server.Port = addr.Port
		case "dsn":
			cfg.Database.DSN = dsn
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown error: %v", err)
		}
	}()

	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Init(); err != nil {
		return err
	}

	// Инициализация chi роутера и middlewares
	r := chi.NewRouter()
	config.SetupMiddlewares(r)

	h := handlers.NewHandler(a.Images, a.Orders, a.Sessions)
	r.Post("/login", h.LoginHandler)
	r.Post("/logout", h.LogoutHandler)
	r.Get("/api/image", h.ImageHandler)
	r.Get("/api/orders", h.OrdersHandler)
	r.Post("/api/orders/refresh", h.RefreshHandler)
	r.Post("/api/orders/close", h.CloseHandler)
	r.Get("/healthz", h.HealthHandler)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	if providers.MetricsHandler != nil {
		r.Method(http.MethodGet, cfg.Telemetry.MetricsPath, providers.MetricsHandler)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      otelhttp.NewHandler(r, cfg.Telemetry.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	return nil
}
