// Package classification Wedding Manager Service.
//
// Guest rosters, attendance and vendors of weddings
//
//    Version: 0.1.0
//
//    Consumes:
//      - application/json
//
//    Produces:
//      - application/json
//
// swagger:meta
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/nuptial-ops/wedding-manager/internal/handler"
	"github.com/nuptial-ops/wedding-manager/internal/log"
	"github.com/nuptial-ops/wedding-manager/internal/server"
	"github.com/nuptial-ops/wedding-manager/internal/tracing"
	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/nuptial-ops/wedding-manager/pkg/document"
	"github.com/nuptial-ops/wedding-manager/pkg/guest"
	"github.com/nuptial-ops/wedding-manager/pkg/lookup"
	"github.com/nuptial-ops/wedding-manager/pkg/matrix"
	"github.com/nuptial-ops/wedding-manager/pkg/notify"
	"github.com/nuptial-ops/wedding-manager/pkg/recordstore"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"github.com/nuptial-ops/wedding-manager/pkg/storage"
	"github.com/nuptial-ops/wedding-manager/pkg/table"
	"github.com/nuptial-ops/wedding-manager/pkg/vendor"
	"github.com/nuptial-ops/wedding-manager/pkg/view"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running wedding manager", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := slog.New(log.New(log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		HandlerOptions: slog.HandlerOptions{Level: cfg.Logging.Level, AddSource: true},
		PrettyPrint:    cfg.Logging.Pretty,
	})))
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Error("Failed to shut down tracing", "error", err)
		}
	}()

	if err := handler.RegisterValidation(); err != nil {
		return err
	}

	db, err := storage.NewDatabase(cfg.Postgresql, logger)
	if err != nil {
		return err
	}

	redisClient, err := storage.NewRedis(cfg.Redis.Address())
	if err != nil {
		return err
	}
	defer redisClient.Close()

	amqpConn, err := amqp.Dial(cfg.RabbitMq.GetUrl())
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}
	defer amqpConn.Close()
	relay, err := notify.NewRelay(logger, amqpConn, cfg.RabbitMq.Exchange)
	if err != nil {
		return err
	}
	defer relay.Close()

	awsS3Client, err := storage.NewAWSS3Client(ctx, cfg.S3)
	if err != nil {
		return err
	}
	s3Client := storage.NewS3Client(logger, awsS3Client, manager.NewUploader(awsS3Client))
	documents := document.NewService(logger, s3Client, cfg.S3.Bucket)

	definitions, err := view.Load()
	if err != nil {
		return err
	}
	guestDefinition, err := definitions.Get(view.Guests)
	if err != nil {
		return err
	}
	vendorDefinition, err := definitions.Get(view.Vendors)
	if err != nil {
		return err
	}

	cache := roster.NewCache(cfg.Roster.ProjectionMaxAge)
	broker := notify.NewBroker()
	hub := notify.NewHub(logger, cache, broker, relay)

	lookupService := lookup.NewService(logger, lookup.NewRepository(db), redisClient, cfg.Roster.LookupCacheTTL, hub)
	store := recordstore.New(db, guestDefinition.Storage.Table, guestDefinition.Storage.AttendanceTable, vendorDefinition.Storage.Table)
	mutator := roster.NewMutator(logger, cache, store, hub)

	guestService := guest.NewService(logger, guestDefinition, guest.NewRepository(db), lookupService)
	guestTable := table.NewService(view.Guests, guestService, cache, mutator)
	vendorTable := table.NewService(view.Vendors, vendor.NewService(logger, vendorDefinition, store, lookupService), cache, mutator)
	registry := matrix.NewRegistry(logger, view.Guests, guestService, store, hub)

	engine, router := server.GetEngine(logger, cfg.Tracing.ServiceName, cfg.BasePath, cfg.AllowedOrigins)
	table.Routes(router, "guests", "roster", table.NewHandler(guestTable, documents, "Guests"))
	table.Routes(router, "vendors", "table", table.NewHandler(vendorTable, documents, "Vendors"))
	matrix.Routes(router, matrix.NewHandler(registry))
	lookup.Routes(router, lookup.NewHandler(lookupService))
	notify.Routes(router, notify.NewHandler(logger, broker, hub))

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: engine.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "address", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := relay.Consume(gctx, hub.Receive)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		registry.RunExpiry(gctx, cfg.Roster.MatrixExpiryPeriod, cfg.Roster.MatrixSessionIdle)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "grace", cfg.ShutdownGrace)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
