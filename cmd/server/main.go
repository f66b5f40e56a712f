package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"landedcost/internal/config"
	"landedcost/internal/infra"
	"landedcost/internal/repository"
	"landedcost/internal/router"
	"landedcost/internal/service"
	"landedcost/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async document extraction and report emails.
	// Worker handlers are wired here (composition root) so the pool has
	// full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	extractor := infra.NewExtractorClient(cfg.ExtractorURL)
	extractorCB := infra.NewCircuitBreaker(infra.ExtractorCBConfig(cfg))
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	pricingSvc := service.NewPricingService(db, productRepo, historyRepo, cfg.EmptyBucketPolicy)
	ingestSvc := service.NewIngestService(supplierRepo, productRepo, invoiceRepo, pricingSvc, cfg)

	workerHandlers := &worker.WorkerHandlers{
		Extract: worker.NewExtractWorker(extractor, extractorCB, documentRepo, ingestSvc, dispatcher, rdb, cfg.IngestReportEmail),
		Email:   worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		DocumentRepo: documentRepo,
		Dispatcher:   dispatcher,
		CB:           extractorCB,
	})

	r := router.New(cfg, db, rdb, extractorCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("landed-cost backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
