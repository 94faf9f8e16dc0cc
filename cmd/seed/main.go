package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/fleetnova/fleetnova/internal/common/config"
	"github.com/fleetnova/fleetnova/internal/common/db"
	"github.com/fleetnova/fleetnova/internal/fleet"
	"github.com/fleetnova/fleetnova/internal/user"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seeds the database with an admin account and a small demo fleet.
// Safe to run repeatedly: rows that already exist are left alone.
func main() {
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", "configs/fleet-service.json", "config file path")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

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
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := fleet.AutoMigrate(gormDB); err != nil {
		logrus.Fatalf("Failed to migrate fleet tables: %v", err)
	}
	if err := user.AutoMigrate(gormDB); err != nil {
		logrus.Fatalf("Failed to migrate users table: %v", err)
	}

	ctx := context.Background()
	store := fleet.NewGormStore(gormDB)
	users := user.NewRepo(gormDB)

	seedAdmin(ctx, users)
	seedFleet(ctx, store)

	logrus.Info("Seed complete")
}

func seedAdmin(ctx context.Context, users *user.Repo) {
	email := envOr("SEED_ADMIN_EMAIL", "admin@fleetnova.io")
	password := envOr("SEED_ADMIN_PASSWORD", "admin123")

	if _, err := users.FindByEmail(ctx, email); err == nil {
		logrus.Infof("Admin %s already exists, skipping", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.Fatalf("Failed to check admin: %v", err)
	}

	salt, err := user.GenerateSaltHex()
	if err != nil {
		logrus.Fatalf("Failed to generate salt: %v", err)
	}
	hash, err := user.HashPassword(password, salt)
	if err != nil {
		logrus.Fatalf("Failed to hash password: %v", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Roles:        user.RolesJoin([]string{user.RoleAdmin}),
	}
	if err := users.Create(ctx, u); err != nil {
		logrus.Fatalf("Failed to create admin: %v", err)
	}
	logrus.Infof("Created admin %s", email)
}

func seedFleet(ctx context.Context, store fleet.Store) {
	registry := fleet.NewRegistryService(store)

	vehicles := []fleet.VehicleInput{
		{Name: "Atlas 01", Plate: "FLT-1001", VehicleType: fleet.TypeTruck, Capacity: 12000, Odometer: 48200, AcquisitionCost: 86000},
		{Name: "Atlas 02", Plate: "FLT-1002", VehicleType: fleet.TypeTruck, Capacity: 9000, Odometer: 112400, AcquisitionCost: 79000},
		{Name: "Courier 01", Plate: "FLT-2001", VehicleType: fleet.TypeVan, Capacity: 1400, Odometer: 23800, AcquisitionCost: 32000},
		{Name: "Courier 02", Plate: "FLT-2002", VehicleType: fleet.TypeVan, Capacity: 1200, Odometer: 61500, AcquisitionCost: 28500},
		{Name: "Sprint 01", Plate: "FLT-3001", VehicleType: fleet.TypeBike, Capacity: 40, Odometer: 5200, AcquisitionCost: 4200},
	}
	for _, in := range vehicles {
		if _, err := registry.CreateVehicle(ctx, in); err != nil {
			if fleet.KindOf(err) == fleet.KindConflict {
				logrus.Infof("Vehicle %s already exists, skipping", in.Plate)
				continue
			}
			logrus.Fatalf("Failed to seed vehicle %s: %v", in.Plate, err)
		}
		logrus.Infof("Created vehicle %s", in.Plate)
	}

	nextYear := time.Now().UTC().AddDate(1, 0, 0)
	drivers := []fleet.DriverInput{
		{Name: "Marta Keller", LicenseNumber: "DL-55001", LicenseCategory: fleet.TypeTruck, LicenseExpiry: nextYear, SafetyScore: 97, Status: fleet.DriverOnDuty},
		{Name: "Jonas Brandt", LicenseNumber: "DL-55002", LicenseCategory: fleet.TypeTruck, LicenseExpiry: nextYear.AddDate(0, 6, 0), SafetyScore: 91, Status: fleet.DriverOnDuty},
		{Name: "Aline Souza", LicenseNumber: "DL-55003", LicenseCategory: fleet.TypeVan, LicenseExpiry: nextYear, SafetyScore: 99, Status: fleet.DriverOffDuty},
		{Name: "Derek Owusu", LicenseNumber: "DL-55004", LicenseCategory: fleet.TypeBike, LicenseExpiry: nextYear.AddDate(-2, 0, 0), SafetyScore: 88, Status: fleet.DriverOnDuty},
	}
	for _, in := range drivers {
		if _, err := registry.CreateDriver(ctx, in); err != nil {
			if fleet.KindOf(err) == fleet.KindConflict {
				logrus.Infof("Driver %s already exists, skipping", in.LicenseNumber)
				continue
			}
			logrus.Fatalf("Failed to seed driver %s: %v", in.LicenseNumber, err)
		}
		logrus.Infof("Created driver %s", in.LicenseNumber)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
