package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/splitstack/splitledger/internal/adapters/database/memory"
	"github.com/splitstack/splitledger/internal/adapters/database/pgsql"
	kafkaevents "github.com/splitstack/splitledger/internal/adapters/events/kafka"
	portsevents "github.com/splitstack/splitledger/internal/core/ports/events"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	"github.com/splitstack/splitledger/internal/core/services"
	"github.com/splitstack/splitledger/internal/handlers"
	"github.com/splitstack/splitledger/internal/middleware"
	"github.com/splitstack/splitledger/pkg/config"
	"github.com/splitstack/splitledger/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Without a database URL the server runs entirely on the in-memory
	// stores; state lives for the lifetime of the process.
	var repos *portsrepo.RepositoryProvider
	if cfg.DatabaseURL == "" {
		logger.Warn("PGSQL_URL not set, using in-memory stores")
		repos = memory.NewRepositoryProvider()
	} else {
		dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.ClosePgxPool(dbPool)

		if err := database.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			logger.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	// Events are optional; without a broker the services publish into a sink.
	var publisher portsevents.Publisher = kafkaevents.NopPublisher{}
	if cfg.KafkaBroker != "" {
		kafkaPublisher := kafkaevents.NewPublisher(cfg.KafkaBroker)
		defer func() {
			if cerr := kafkaPublisher.Close(); cerr != nil {
				logger.Error("Failed to close event publisher", slog.String("error", cerr.Error()))
			}
		}()
		publisher = kafkaPublisher
		logger.Info("Event publisher connected", slog.String("broker", cfg.KafkaBroker))
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, publisher)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimitSpec)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memorystore.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
