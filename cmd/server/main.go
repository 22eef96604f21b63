package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/yhk1105/114-1-DBFinal/pkg/auth"
	"github.com/yhk1105/114-1-DBFinal/pkg/cache"
	"github.com/yhk1105/114-1-DBFinal/pkg/config"
	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/events"
	"github.com/yhk1105/114-1-DBFinal/pkg/limiter"
	"github.com/yhk1105/114-1-DBFinal/pkg/metrics"
	"github.com/yhk1105/114-1-DBFinal/pkg/server"
	"github.com/yhk1105/114-1-DBFinal/pkg/service"
	"github.com/yhk1105/114-1-DBFinal/pkg/worker"
)

const (
	gracefulTimeout = time.Second * 15
)

func main() {
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	rdb, closeRedis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("### Can't init redis: %v", err)
	}
	defer closeRedis()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(db, cfg.PostgresDB))
	m := metrics.New(reg)

	coordinator := database.NewCoordinator(db, cfg.TxMaxAttempts, cfg.TxBaseDelay, m)

	attempts := database.NewAttemptBatchingDatabase(db, cfg.AttemptsBatchSize, cfg.AttemptsFlushInterval)
	defer func() {
		if err := attempts.Close(); err != nil {
			slog.Error("can't flush reservation attempts", slog.Any("error", err))
		}
	}()

	var publisher service.EventPublisher
	if cfg.KafkaBrokers != "" {
		producer := events.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
	}

	reservationSvc, itemSvc := composeServices(db, rdb, coordinator, attempts, publisher, m, cfg)

	if cfg.LoansInterval > 0 {
		loans := &worker.Loans{
			Coordinator: coordinator,
			Loans:       database.LoanDatabase{},
			Ahead:       time.Duration(cfg.LoansHoursAhead) * time.Hour,
			Metrics:     m,
		}

		stopLoans, err := loans.Start(cfg.LoansInterval)
		if err != nil {
			log.Fatalf("### Can't start loans job: %v", err)
		}
		defer stopLoans()
	}

	resolver := &auth.Resolver{Secret: []byte(cfg.JWTSecret)}
	srv := server.New(cfg.ListenAddr, resolver, reservationSvc, itemSvc, reg)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("### Can't listen and serve: %v", err)
		}
	}()
	slog.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("can't shutdown server", slog.Any("error", err))
	}
}

func composeServices(
	db *sql.DB,
	rdb *redis.Client,
	coordinator *database.Coordinator,
	attempts database.AttemptRepository,
	publisher service.EventPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
) (reservation service.Reservation, item service.Item) {
	tree := &service.CategoryTree{Categories: database.CategoryDatabase{}}
	allocator := &service.ContributionAllocator{Tree: tree, Contributions: database.ContributionDatabase{}}

	reservation = &service.ReservationGeneric{
		Coordinator:    coordinator,
		DB:             db,
		Items:          database.ItemDatabase{},
		Reservations:   database.ReservationDatabase{},
		Attempts:       attempts,
		Bans:           &service.BanValidator{Tree: tree, Bans: database.BanDatabase{}},
		Overlap:        &service.OverlapChecker{Items: database.ItemDatabase{}, Reservations: database.ReservationDatabase{}},
		Contributions:  allocator,
		CancelLeadTime: cfg.CancelLeadTime,
		Metrics:        m,
	}

	if cfg.CachePickupPlaces {
		reservation = &service.PickupCaching{Reservation: reservation, Redis: rdb, TTL: cfg.PickupPlacesCacheTTL}
	}

	if publisher != nil {
		reservation = &service.ReservationPublishing{Reservation: reservation, Publisher: publisher}
	}

	if cfg.ReservationsLimit > 0 {
		reservation = &service.ReservationLimiting{
			Reservation: reservation,
			Limiter:     &limiter.Limiter{Redis: rdb, Limit: cfg.ReservationsLimit, Window: cfg.ReservationsWindow},
			FailOpen:    cfg.LimiterFailOpen,
		}
	}

	reservation = &service.ReservationLogging{Reservation: reservation}

	item = &service.ItemGeneric{
		Coordinator:   coordinator,
		Items:         database.ItemDatabase{},
		Contributions: allocator,
	}
	item = &service.ItemLogging{Item: item}

	return
}

func parseLogLevel(lvl string) slog.Level {
	switch lvl {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String(), "WARNING":
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
