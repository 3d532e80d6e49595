// Package app wires the cafeteria service together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Homd11/CAFESYSTEM/internal/domain/loyalty"
	"github.com/Homd11/CAFESYSTEM/internal/domain/order"
	"github.com/Homd11/CAFESYSTEM/internal/domain/payment"
	"github.com/Homd11/CAFESYSTEM/internal/handler"
	"github.com/Homd11/CAFESYSTEM/internal/repository"
	"github.com/Homd11/CAFESYSTEM/pkg/health"
	"github.com/Homd11/CAFESYSTEM/pkg/httpmiddleware"
)

const serviceName = "cafeteria-api"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := health.New()
	healthSvc.Add(health.Check{
		Name:    "postgres",
		Kind:    health.Readiness,
		Timeout: cfg.Health.DatabaseTimeout,
		Func:    health.PingCheck(pool),
	})
	healthSvc.Add(health.Check{
		Name:    "goroutines",
		Kind:    health.Liveness,
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(cfg.Health.MaxGoroutines),
	})
	healthSvc.Start(ctx, cfg.Health.Interval)
	healthSvc.SetReady(true)

	// Repositories.
	menuRepo := repository.NewMenuRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	loyaltyRepo := repository.NewLoyaltyRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	// Domain services.
	program := loyalty.NewProgram(loyaltyRepo, loyalty.NewMemoryDiscountStore())
	payments := payment.NewProcessor()
	orders := order.NewProcessor(menuRepo, orderRepo, payments, paymentRepo, program, program,
		order.WithTracerProvider(m.TracerProvider()),
		order.WithMeterProvider(m.MeterProvider()),
	)

	mux := http.NewServeMux()
	healthSvc.Register(mux)
	handler.NewHandler(menuRepo, studentRepo, program, orders, paymentRepo, payments, payments.Methods()).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.RequestID(),
			httpmiddleware.Instrument(serviceName, m),
			httpmiddleware.LogRequests(),
		),
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
