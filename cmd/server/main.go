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

	"clinicbooking/internal/api"
	"clinicbooking/internal/config"
	"clinicbooking/internal/middleware"
	"clinicbooking/internal/repository"
	"clinicbooking/internal/service"
	"clinicbooking/internal/utils"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinicbooking",
		Short: "Doctor appointment booking API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, newLogger(cfg))
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the postgres bookings schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrate")
			}

			ctx := context.Background()
			conn, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := repository.Migrate(ctx, conn); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Bookings schema is up to date.")
			return nil
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// openStore builds the configured booking store.
func openStore(ctx context.Context, cfg *config.Config) (repository.BookingRepository, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return repository.NewMemoryBookingRepository(), nil
	case config.StoreFile:
		return repository.NewFileBookingRepository(cfg.BookingsFile)
	case config.StorePostgres:
		conn, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewPGBookingRepository(conn), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// shareFileStore makes a file store re-read and lock its document so that
// several processes can share it. Other stores are left alone.
func shareFileStore(store repository.BookingRepository, locks repository.DocumentLocker) bool {
	fileStore, ok := store.(*repository.FileBookingRepository)
	if ok {
		fileStore.Share(locks)
	}
	return ok
}

func runServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("store", cfg.Store).Msg("failed to open booking store")
		return err
	}
	defer store.Close()
	logger.Info().Str("store", cfg.Store).Msg("booking store ready")

	doctors, err := repository.LoadDoctorRepository(cfg.DoctorsFile)
	if err != nil {
		logger.Error().Err(err).Str("file", cfg.DoctorsFile).Msg("failed to load doctor directory")
		return err
	}

	var locks service.KeyLocker = service.NewLocalKeyLocker()
	if cfg.RedisURL != "" {
		redisLocks, err := service.NewRedisKeyLocker(ctx, cfg.RedisURL, cfg.LockTTL, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to connect to redis")
			return err
		}
		defer redisLocks.Close()
		locks = redisLocks
		shareFileStore(store, redisLocks)
		logger.Info().Msg("using redis slot locks")
	}

	catalog := utils.NewSlotCatalog(utils.ParseSlotList(cfg.Slots))
	bookingSvc := service.NewBookingService(store, catalog, locks, cfg.SlotCapacity, logger)
	doctorSvc := service.NewDoctorService(doctors)
	jobSvc := service.NewJobService(store, logger)

	scheduler := cron.New()
	if cfg.ReportCron != "" {
		if _, err := scheduler.AddFunc(cfg.ReportCron, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			jobSvc.LogDailyReport(jobCtx)
		}); err != nil {
			return fmt.Errorf("invalid REPORT_CRON %q: %w", cfg.ReportCron, err)
		}
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	router := api.NewRouter(
		api.NewUserBookingHandler(bookingSvc, doctorSvc, logger),
		api.NewAdminHandler(bookingSvc, cfg.Store, logger),
		api.RouterConfig{
			StaticDir:   cfg.StaticDir,
			CORSOrigins: cfg.CORSOrigins,
			TrustProxy:  cfg.TrustProxy,
			BookLimit: middleware.RateLimitConfig{
				RequestsPerMinute: cfg.BookRatePerMin,
				Burst:             cfg.BookRateBurst,
			},
		},
		logger,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Int("capacity", cfg.SlotCapacity).
			Int("slots", catalog.Len()).
			Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server failed")
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
