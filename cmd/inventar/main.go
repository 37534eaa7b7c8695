// Inventar Core - device inventory and assignment service.
//
// This is the main entry point for the Inventar Core service. It opens
// the store, applies migrations, connects the optional event channels
// (MQTT, Redis, InfluxDB) and serves the REST/WebSocket API until it
// receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/inventar-app/inventar-core/migrations"

	"github.com/inventar-app/inventar-core/internal/api"
	"github.com/inventar-app/inventar-core/internal/export"
	"github.com/inventar-app/inventar-core/internal/infrastructure/config"
	"github.com/inventar-app/inventar-core/internal/infrastructure/database"
	"github.com/inventar-app/inventar-core/internal/infrastructure/influxdb"
	"github.com/inventar-app/inventar-core/internal/infrastructure/logging"
	"github.com/inventar-app/inventar-core/internal/infrastructure/mqtt"
	"github.com/inventar-app/inventar-core/internal/infrastructure/redis"
	"github.com/inventar-app/inventar-core/internal/inventory"
	"github.com/inventar-app/inventar-core/internal/notify"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// drainTimeout bounds how long shutdown waits for in-flight notifications.
const drainTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Inventar Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "driver", db.Driver(), "path", db.Path())

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Event channels are optional: a failing broker is logged and the
	// service keeps running without that sink.
	components := make(map[string]api.HealthChecker)
	var sinks []notify.Sink

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(ctx, cfg.MQTT)
		if mqttErr != nil {
			log.Warn("MQTT unavailable, continuing without it", "error", mqttErr)
			components["mqtt"] = nil
		} else {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
			components["mqtt"] = mqttClient
			sinks = append(sinks, notify.NewMQTTSink(mqttClient))
		}
	}

	if cfg.Redis.Enabled {
		redisClient, redisErr := redis.Connect(ctx, cfg.Redis)
		if redisErr != nil {
			log.Warn("Redis unavailable, continuing without it", "error", redisErr)
			components["redis"] = nil
		} else {
			defer func() {
				log.Info("disconnecting from Redis")
				if closeErr := redisClient.Close(); closeErr != nil {
					log.Error("error closing Redis", "error", closeErr)
				}
			}()
			log.Info("Redis connected", "addr", cfg.Redis.Addr)
			components["redis"] = redisClient
			sinks = append(sinks, notify.NewRedisSink(redisClient))
		}
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			log.Warn("InfluxDB unavailable, continuing without it", "error", influxErr)
			components["influxdb"] = nil
		} else {
			influxClient.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			defer func() {
				log.Info("closing InfluxDB")
				if closeErr := influxClient.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			}()
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
			components["influxdb"] = influxClient
			sinks = append(sinks, notify.NewInfluxSink(influxClient))
		}
	}

	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)
	sinks = append(sinks, hub)

	dispatcher := notify.NewDispatcher(log, cfg.GetNotifyTimeout(), sinks...)
	defer func() {
		log.Info("draining notifications")
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
		defer cancel()
		if closeErr := dispatcher.Close(drainCtx); closeErr != nil {
			log.Error("error draining notifications", "error", closeErr)
		}
	}()
	log.Info("notification sinks ready", "sinks", dispatcher.Sinks())

	manager := inventory.NewManager(inventory.NewSQLRepository(db), dispatcher, nil, log)

	server, err := api.New(api.Deps{
		Config:        cfg.API,
		WS:            cfg.WebSocket,
		Export:        export.OptionsFromConfig(cfg.Export, cfg.GetLocation()),
		Logger:        log,
		Inventory:     manager,
		Database:      db,
		Components:    components,
		DBStats:       db,
		Notifications: dispatcher,
		Hub:           hub,
		Version:       version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, log, db, server, components); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API server, notification
	// drain, InfluxDB, Redis, MQTT, database.

	log.Info("Inventar Core stopped")
	return nil
}

// openDatabase maps the database config section onto database.Config.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	return database.Open(ctx, database.Config{
		Driver:       database.Driver(cfg.Database.Driver),
		Path:         cfg.Database.Path,
		WALMode:      cfg.Database.WALMode,
		BusyTimeout:  cfg.Database.BusyTimeout,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
}

// getConfigPath returns the configuration file path.
// Uses INVENTAR_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("INVENTAR_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies the database at startup. Optional components are
// only reported: a component that failed to connect is nil and was
// already logged, and a connected one that fails its check degrades
// /health rather than stopping the service.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - log: Logger for degraded components
//   - db: Database connection to check
//   - server: API server to check
//   - components: Optional clients keyed by name (nil if unavailable)
//
// Returns:
//   - error: Database or API failure, or nil
func healthCheck(ctx context.Context, log *logging.Logger, db, server api.HealthChecker, components map[string]api.HealthChecker) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := server.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	for name, c := range components {
		if c == nil {
			continue
		}
		if err := c.HealthCheck(ctx); err != nil {
			log.Warn("component unhealthy at startup", "component", name, "error", err)
		}
	}
	return nil
}
