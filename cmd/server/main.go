package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"goldrefinery/m/internal/api"
	"goldrefinery/m/internal/checkout"
	"goldrefinery/m/internal/config"
	"goldrefinery/m/internal/database"
	"goldrefinery/m/internal/jobs"
	"goldrefinery/m/internal/logger"
	"goldrefinery/m/internal/metrics"
	"goldrefinery/m/internal/migrations"
	"goldrefinery/m/internal/seed"
	"goldrefinery/m/internal/store"
)

const defaultCatalog = "assets/products.csv"

func main() {
	cfg, cfgErr := config.Load()

	zlog, err := logger.Init(cfg.LogMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	if cfgErr != nil {
		zlog.Fatal("invalid configuration", zap.Error(cfgErr))
	}
	for _, w := range cfg.Warnings {
		zlog.Warn(w)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zlog.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		zlog.Fatal("migrations failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedDemo {
		companyID, err := seed.Demo(ctx, db, zlog)
		if err != nil {
			zlog.Fatal("demo seed failed", zap.Error(err))
		}
		catalog := cfg.CatalogCSV
		if catalog == "" {
			catalog = defaultCatalog
		}
		if _, err := seed.ImportCatalogFile(ctx, db, zlog, companyID, catalog); err != nil {
			zlog.Error("catalog import failed", zap.String("path", catalog), zap.Error(err))
		}
	}

	var seq store.Sequence = store.CounterSequence{}
	if cfg.InvoiceSequence == config.SequenceCount {
		zlog.Warn("count-based invoice numbering can issue duplicate numbers under concurrent checkouts")
		seq = store.CountSequence{}
	}

	m := metrics.New()
	svc := checkout.NewService(db, checkout.Options{
		TaxRate:       cfg.TaxRate,
		InvoicePrefix: cfg.InvoicePrefix,
		Sequence:      seq,
		Logger:        zlog.Named("checkout"),
		Metrics:       m,
		Now:           func() time.Time { return time.Now().In(loc) },
	})

	sched := jobs.New(db, m, zlog.Named("jobs"), cfg.LowStockThreshold, loc)
	if err := sched.Start(cfg.LowStockSchedule); err != nil {
		zlog.Error("scheduler not started", zap.Error(err))
	} else {
		defer sched.Stop()
	}

	handler := api.New(db, api.Options{
		Secret:   cfg.Secret,
		Checkout: svc,
		Metrics:  m,
		Logger:   zlog.Named("http"),
		Location: loc,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zlog.Info("gold refinery POS server starting",
		zap.String("addr", srv.Addr),
		zap.String("driver", cfg.DatabaseDriver),
		zap.String("tax_rate", cfg.TaxRate.String()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("server error", zap.Error(err))
	}
	zlog.Info("server stopped")
}
