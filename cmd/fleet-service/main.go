package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/fleetnova/fleetnova/internal/common/config"
	"github.com/fleetnova/fleetnova/internal/common/db"
	"github.com/fleetnova/fleetnova/internal/common/logger"
	"github.com/fleetnova/fleetnova/internal/common/server"
	"github.com/fleetnova/fleetnova/internal/common/tracing"
	"github.com/fleetnova/fleetnova/internal/fleet"
	"github.com/fleetnova/fleetnova/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", "configs/fleet-service.json", "config file path")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("Failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	store, users, err := openStores(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	registry := fleet.NewRegistryService(store)
	trips := fleet.NewTripService(store)
	maintenance := fleet.NewMaintenanceService(store)
	stats := fleet.NewStatsService(store)

	fleetHandlers := fleet.NewHandlers(registry, trips, maintenance, stats, cfg.Auth, log)
	authHandlers := user.NewHandlers(users, cfg.Auth)

	err = server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		r.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{"service": cfg.Server.Name, "status": "running"})
		})
		authHandlers.Register(r)
		fleetHandlers.Register(r)
		return nil
	})
	if err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// loadConfig prefers the Consul KV store when CONFIG_FROM_CONSUL is set,
// falling back to the local JSON file (and its built-in defaults).
func loadConfig(path string) (*config.Config, error) {
	if os.Getenv("CONFIG_FROM_CONSUL") == "1" {
		host := envOr("CONSUL_HOST", "localhost")
		port := envIntOr("CONSUL_PORT", 8500)
		key := envOr("CONSUL_CONFIG_KEY", "fleetnova/fleet-service/config")
		cfg, err := config.LoadConfigFromConsulKV(host, port, key)
		if err == nil {
			return cfg, nil
		}
		logrus.Warnf("Consul KV config unavailable (%v), falling back to file", err)
	}
	return config.LoadConfig(path)
}

// openStores builds the fleet store and user store for the configured
// database driver.
func openStores(cfg *config.Config, log logger.Logger) (fleet.Store, user.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Warn("running on the in-memory store; data is lost on restart")
		return fleet.NewMemStore(), user.NewMemRepo(), nil
	default:
		gormDB, err := db.NewMySQL(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Database,
			cfg.Database.MaxIdle,
			cfg.Database.MaxOpen,
		)
		if err != nil {
			return nil, nil, err
		}
		if err := fleet.AutoMigrate(gormDB); err != nil {
			return nil, nil, err
		}
		if err := user.AutoMigrate(gormDB); err != nil {
			return nil, nil, err
		}
		return fleet.NewGormStore(gormDB), user.NewRepo(gormDB), nil
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
