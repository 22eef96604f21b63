package config

import (
	"flag"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/database"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type Config struct {
	LogLevel   string
	ListenAddr string

	PostgresAddr     string // Postgres address in host[:port] format
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string // Redis user
	RedisPassword string // Redis password

	JWTSecret string

	TxMaxAttempts  int
	TxBaseDelay    time.Duration
	CancelLeadTime time.Duration

	LimiterFailOpen      bool
	ReservationsLimit    int
	ReservationsWindow   time.Duration
	CachePickupPlaces    bool
	PickupPlacesCacheTTL time.Duration

	AttemptsBatchSize     int
	AttemptsFlushInterval time.Duration

	KafkaBrokers string // comma separated, events are not published when empty
	KafkaTopic   string

	LoansInterval   time.Duration
	LoansHoursAhead int

	// Seeder params
	SeedMembers    int
	SeedCategories int
	SeedItems      int

	MigrateDown bool
}

func New() *Config {
	c := &Config{}

	flag.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "DEBUG"), "Set log level: DEBUG, INFO, WARNING, ERROR.")
	flag.StringVar(&c.ListenAddr, "listenAddr", LookupEnvString("LISTEN_ADDR", ":8000"), `Address in form of "[host]:port" that HTTP server should be listening on.`)

	flag.StringVar(&c.PostgresAddr, "postgresAddr", LookupEnvString("POSTGRES_ADDR", "127.0.0.1:5432"), "Set PostgreSQL address as host:port, where port is optional (without TLS).")
	flag.StringVar(&c.PostgresDB, "postgresDB", LookupEnvString("POSTGRES_DB", "sharing"), "Set PostgreSQL DB.")
	flag.StringVar(&c.PostgresUser, "postgresUser", LookupEnvString("POSTGRES_USER", "develop"), "Set PostgreSQL user.")
	flag.StringVar(&c.PostgresPassword, "postgresPassword", LookupEnvString("POSTGRES_PASSWORD", "develop"), "Set PostgreSQL password.")

	flag.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address in host[:port] format.")
	flag.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	flag.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")

	flag.StringVar(&c.JWTSecret, "jwtSecret", LookupEnvString("JWT_SECRET", "develop"), "Secret used to verify HS256 access tokens.")

	flag.IntVar(&c.TxMaxAttempts, "txMaxAttempts", LookupEnvInt("TX_MAX_ATTEMPTS", database.DefaultMaxAttempts), "How many times a conflicting transaction is executed before giving up.")
	flag.DurationVar(&c.TxBaseDelay, "txBaseDelay", LookupEnvDuration("TX_BASE_DELAY", database.DefaultBaseDelay), "Base delay between transaction retries, multiplied by attempt number.")
	flag.DurationVar(&c.CancelLeadTime, "cancelLeadTime", LookupEnvDuration("CANCEL_LEAD_TIME", model.DefaultCancelLeadTime), "Reservation can't be cancelled if any of its lines starts sooner than that.")

	flag.BoolVar(&c.LimiterFailOpen, "limiterFailOpen", LookupEnvBool("LIMITER_FAIL_OPEN", false), "Set to make limiter allow request if failed to check limits.")
	flag.IntVar(&c.ReservationsLimit, "reservationsLimit", LookupEnvInt("RESERVATIONS_LIMIT", 20), "Number of reservations that single member can create within one window. Zero disables limiting.")
	flag.DurationVar(&c.ReservationsWindow, "reservationsWindow", LookupEnvDuration("RESERVATIONS_WINDOW", time.Hour), "Length of the reservations limiting window.")
	flag.BoolVar(&c.CachePickupPlaces, "cachePickupPlaces", LookupEnvBool("CACHE_PICKUP_PLACES", false), "Set to cache item pickup places in redis.")
	flag.DurationVar(&c.PickupPlacesCacheTTL, "pickupPlacesCacheTTL", LookupEnvDuration("PICKUP_PLACES_CACHE_TTL", time.Minute), "How long pickup places stay cached.")

	flag.IntVar(&c.AttemptsBatchSize, "attemptsBatchSize", LookupEnvInt("ATTEMPTS_BATCH_SIZE", 500), "Number of reservation attempts to be stored in buffer before being flushed.")
	flag.DurationVar(&c.AttemptsFlushInterval, "attemptsFlushInterval", LookupEnvDuration("ATTEMPTS_FLUSH_INTERVAL", 10*time.Second), "How often attempts buffer should be flushed.")

	flag.StringVar(&c.KafkaBrokers, "kafkaBrokers", LookupEnvString("KAFKA_BROKERS", ""), "Comma separated Kafka brokers. Leave empty to disable events.")
	flag.StringVar(&c.KafkaTopic, "kafkaTopic", LookupEnvString("KAFKA_TOPIC", "reservations"), "Kafka topic for reservation events.")

	flag.DurationVar(&c.LoansInterval, "loansInterval", LookupEnvDuration("LOANS_INTERVAL", 10*time.Minute), "How often loans are prepared for upcoming reservations. Zero disables the job.")
	flag.IntVar(&c.LoansHoursAhead, "loansHoursAhead", LookupEnvInt("LOANS_HOURS_AHEAD", 24), "Prepare loans for reservations starting within that many hours.")

	flag.IntVar(&c.SeedMembers, "seedMembers", LookupEnvInt("SEED_MEMBERS", 100), "Number of members to generate (only for seed).")
	flag.IntVar(&c.SeedCategories, "seedCategories", LookupEnvInt("SEED_CATEGORIES", 5), "Number of root categories to generate (only for seed).")
	flag.IntVar(&c.SeedItems, "seedItems", LookupEnvInt("SEED_ITEMS", 1000), "Number of items to generate (only for seed).")

	flag.BoolVar(&c.MigrateDown, "down", false, "Roll back all migrations (only for migrator).")

	flag.Parse()

	return c
}
