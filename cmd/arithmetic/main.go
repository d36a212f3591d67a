package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"

	"arithapi/internal/api"
	"arithapi/internal/config"
	"arithapi/internal/grpc"
	"arithapi/internal/logger"
	"arithapi/internal/metrics"
	"arithapi/internal/service"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка создания логгера: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Sugar()); err != nil {
		log.Sugar().Errorw("Сервис завершился с ошибкой", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	svc := service.New(cfg.ValidationMode(), cfg.EchoOperation)

	var collector *metrics.Collector
	var metricsHandler http.Handler
	if cfg.Metrics {
		collector = metrics.NewCollector()
		metricsHandler = collector.Handler()
	}

	handler := api.NewCalculatorHandler(svc, api.WithMetrics(collector), api.WithLogger(log))
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.SetupRouter(handler, metricsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		log.Infow("Starting HTTP server", "addr", cfg.HTTPAddr, "mode", svc.Mode(), "echo_operation", svc.EchoOperation())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "http server")
		}
	}()

	var grpcServer *grpclib.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpc.NewServer(grpc.NewCalculatorServer(svc, collector, log))
		go func() {
			if err := grpc.StartServer(cfg.GRPCAddr, grpcServer); err != nil {
				errCh <- errors.Wrap(err, "grpc server")
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Получен сигнал завершения, останавливаем серверы")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.CombineErrors(runErr, errors.Wrap(err, "http shutdown"))
	}

	log.Info("Серверы остановлены")
	return runErr
}
