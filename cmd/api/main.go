package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"royalpalace/internal/api"
	"royalpalace/internal/config"
	"royalpalace/internal/database"
	"royalpalace/internal/domain"
	"royalpalace/internal/events"
	"royalpalace/internal/export"
	"royalpalace/internal/google"
	"royalpalace/internal/logging"
	"royalpalace/internal/models"
	"royalpalace/internal/notify"
	"royalpalace/internal/repository"
	"royalpalace/internal/service"
	"royalpalace/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	rooms, err := loadRooms(cfg, &logger)
	if err != nil {
		return err
	}

	db, err := initDatabase(cfg, rooms, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	sessionStore := initSessionStore(redisClient, &logger)

	bus := events.NewBus(&logger)

	promos := service.NewPromoService(db, &logger)
	bookings := service.NewBookingService(db, promos, bus, &logger)
	availability := service.NewAvailabilityService(db, &logger)
	receipts := service.NewReceiptService(db, bus, &logger, cfg.App.PublicURL)
	sessions := service.NewSessionService(db, sessionStore, &logger,
		time.Duration(cfg.Booking.SessionTTLHours)*time.Hour)
	exporter := export.NewExcelExporter(db, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seedCalendars(ctx, availability, rooms, cfg, &logger)

	startSheetsWorker(ctx, cfg, db, redisClient, bus, &logger)
	subscribeNotifier(ctx, cfg, bus, bookings, &logger)
	startBackups(ctx, cfg, db, &logger)
	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewServer(cfg.API, api.Deps{
		Availability: availability,
		Bookings:     bookings,
		Receipts:     receipts,
		Promos:       promos,
		Sessions:     sessions,
		SessionStore: sessionStore,
		Exporter:     exporter,
	}, &logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()
	logger.Info().Int("http_port", cfg.API.Port).Msg("booking server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("booking server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadRooms(cfg *config.Config, logger *zerolog.Logger) ([]models.Room, error) {
	roomsPath := os.Getenv("ROOMS_PATH")
	if roomsPath == "" {
		roomsPath = cfg.RoomsFile
	}
	roomsData, err := os.ReadFile(roomsPath)
	if err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("read rooms")
		return nil, err
	}

	var roomsConfig struct {
		Rooms []models.Room `yaml:"rooms"`
	}
	if err := yaml.Unmarshal(roomsData, &roomsConfig); err != nil {
		logger.Error().Err(err).Str("rooms_path", roomsPath).Msg("parse rooms")
		return nil, err
	}

	return roomsConfig.Rooms, nil
}

func initDatabase(cfg *config.Config, rooms []models.Room, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	roomPointers := make([]*models.Room, len(rooms))
	for i := range rooms {
		roomPointers[i] = &rooms[i]
	}
	db.SetRooms(roomPointers)
	return db, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initSessionStore prefers redis with an in-memory fallback so admin logins
// survive a redis outage.
func initSessionStore(redisClient *redis.Client, logger *zerolog.Logger) domain.SessionStore {
	memory := repository.NewMemorySessionStore()
	if redisClient == nil {
		logger.Warn().Msg("sessions stored in memory only")
		return memory
	}
	primary := repository.NewRedisSessionStoreFromClient(redisClient)
	return repository.NewFailoverSessionStore(primary, memory, logger)
}

func seedCalendars(ctx context.Context, availability *service.AvailabilityService, rooms []models.Room, cfg *config.Config, logger *zerolog.Logger) {
	for _, room := range rooms {
		if err := availability.InitializeRoomAvailability(ctx, room.ID, cfg.Booking.InitializeDays); err != nil {
			logger.Error().Err(err).Int64("room_id", room.ID).Msg("seed availability calendar")
		}
	}
}

func startSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, bus *events.Bus, logger *zerolog.Logger) {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadsheetID == "" {
		logger.Info().Msg("google sheets sync disabled")
		return
	}

	sheetsService, err := google.NewSheetsService(ctx,
		cfg.Google.CredentialsFile,
		cfg.Google.BookingsSpreadsheetID,
		cfg.Google.SheetName,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return
	}
	logger.Info().Msg("google sheets connected")

	sheetsWorker := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.RetryPolicy{
		MaxRetries: cfg.Booking.MaxSyncRetries,
	}, logger)

	// Booking events only wake the worker; the queued row in sqlite is what
	// gets processed.
	bus.Subscribe("", func(ctx context.Context, e events.Event) {
		if e.BookingID != "" {
			sheetsWorker.Notify(ctx, 0)
		}
	})

	go sheetsWorker.Start(ctx)
}

func subscribeNotifier(ctx context.Context, cfg *config.Config, bus *events.Bus, bookings *service.BookingService, logger *zerolog.Logger) {
	if !cfg.Telegram.Enabled {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Debug, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	bus.Subscribe(events.TypeBookingCreated, func(ctx context.Context, e events.Event) {
		booking, err := bookings.GetBooking(ctx, e.BookingID)
		if err != nil {
			logger.Error().Err(err).Str("booking_id", e.BookingID).Msg("load booking for notification")
			return
		}
		text := fmt.Sprintf("New booking: %s, %s to %s, %s, Rs %.2f",
			booking.RoomName,
			booking.CheckIn.Format(models.DateLayout),
			booking.CheckOut.Format(models.DateLayout),
			booking.GuestName,
			booking.TotalPrice)
		if err := notifier.Notify(ctx, text); err != nil {
			logger.Error().Err(err).Str("booking_id", e.BookingID).Msg("send booking notification")
		}
	})

	bus.Subscribe(events.TypeTableBooked, func(ctx context.Context, e events.Event) {
		if err := notifier.Notify(ctx, "New restaurant table booking received"); err != nil {
			logger.Error().Err(err).Msg("send table notification")
		}
	})

	logger.Info().Msg("telegram notifications enabled")
}

func startBackups(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) {
	if !cfg.Backup.Enabled {
		return
	}

	interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				path, err := db.Backup(ctx, cfg.Backup.StoragePath)
				if err != nil {
					logger.Error().Err(err).Msg("database backup failed")
					continue
				}
				logger.Info().Str("path", path).Msg("database backup created")
				if err := db.CleanupOldBackups(cfg.Backup.StoragePath, cfg.Backup.Keep); err != nil {
					logger.Warn().Err(err).Msg("backup cleanup failed")
				}
			}
		}
	}()
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
