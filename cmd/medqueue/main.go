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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/handler"
	v1 "github.com/dmehra2102/prod-golang-projects/medqueue/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/seed"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store/memory"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/store/postgres"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/tracer"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "medqueue",
		Short:         "Hospital queue and records API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Store.Driver != config.StorePostgres {
				return fmt.Errorf("migrate needs STORE_DRIVER=%s, got %q", config.StorePostgres, cfg.Store.Driver)
			}
			db, err := database.Connect(cfg.Database, log)
			if err != nil {
				return err
			}
			return database.Migrate(db, log)
		},
	}
}

func seedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample departments and staff accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Store.Driver != config.StorePostgres {
				return errors.New("the memory store is seeded by serve; seed only applies to postgres")
			}
			db, err := database.Connect(cfg.Database, log)
			if err != nil {
				return err
			}
			_, err = seed.Run(cmd.Context(), postgres.New(db), password, log)
			return err
		},
	}
	cmd.Flags().StringVar(&password, "password", seed.DefaultPassword, "password given to every sample account")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openStore returns the configured backend and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, m *metrics.Collector) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.Connect(cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db, log); err != nil {
			return nil, nil, err
		}
		watchCtx, stopWatch := context.WithCancel(ctx)
		go database.WatchPool(watchCtx, db, m.DBConnections, 15*time.Second)

		closeDB := func() {
			stopWatch()
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return postgres.New(db), closeDB, nil
	default:
		return memory.New(), func() {}, nil
	}
}

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector("medqueue", reg)

	st, closeStore, err := openStore(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Store.SeedSampleData {
		if _, err := seed.Run(ctx, st, seed.DefaultPassword, log); err != nil {
			return fmt.Errorf("seeding sample data: %w", err)
		}
	}

	hub := realtime.NewHub(cfg.Realtime, log, m)
	audit := service.NewAuditService(st.AuditLogs(), log, m)
	jwtManager := auth.NewJWTManager(cfg.JWT)

	deps := service.Deps{
		Store:     st,
		Audit:     audit,
		Publisher: hub,
		Metrics:   m,
		Log:       log,
	}
	queue := service.NewQueueService(deps)
	services := v1.Services{
		Auth:          service.NewAuthService(deps, jwtManager),
		Queue:         queue,
		Appointments:  service.NewAppointmentService(deps, queue),
		Departments:   service.NewDepartmentService(deps),
		Staff:         service.NewStaffService(deps),
		Patients:      service.NewPatientService(deps),
		Prescriptions: service.NewPrescriptionService(deps),
		Drugs:         service.NewDrugService(deps),
		Theatres:      service.NewTheatreService(deps),
		Alerts:        service.NewAlertService(deps),
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterDeps{
		Config:   cfg,
		Services: services,
		Hub:      hub,
		Tokens:   jwtManager,
		Metrics:  m,
		Gatherer: reg,
		Log:      log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	hub.Close()
	if err := audit.Shutdown(shutdownCtx); err != nil {
		log.Warn("audit shutdown incomplete", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
