package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/egannguyen/go-order-management/internal/config"
	httpdelivery "github.com/egannguyen/go-order-management/internal/delivery/http"
	"github.com/egannguyen/go-order-management/internal/messaging"
	"github.com/egannguyen/go-order-management/internal/messaging/kafka"
	"github.com/egannguyen/go-order-management/internal/repository/sqlstore"
	"github.com/egannguyen/go-order-management/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:   "orderd",
		Short: "Order-management backend",
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	slog.SetLogLoggerLevel(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := sqlstore.Open(cfg.StoreDriver, cfg.StoreDSN, cfg.QueryTimeout)
	if err != nil {
		return err
	}
	defer store.Close()

	var publisher messaging.Publisher = messaging.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		wmLogger := watermill.NewSlogLogger(slog.Default())
		kafkaPub, err := kafka.NewPublisher(cfg.KafkaBrokers, wmLogger)
		if err != nil {
			return err
		}
		publisher = messaging.NewEventPublisher(kafkaPub)
		slog.Info("Kafka publisher configured", "brokers", cfg.KafkaBrokers)
	}
	defer publisher.Close()

	customers := service.NewCustomerService(store)
	catalog := service.NewCatalogService(store, publisher)
	orders := service.NewOrderService(store, publisher)
	queries := service.NewQueryService(store)

	mux := http.NewServeMux()
	httpdelivery.NewHandler(customers, catalog, orders, queries).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpdelivery.EnableCORS(httpdelivery.WithTimeout(cfg.RequestTimeout, mux)),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
