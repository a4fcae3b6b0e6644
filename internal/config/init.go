package config

import (
	"fmt"
	"os"
	"time"

	"github.com/datasteward/dqtracker/internal/appcontext"
	"github.com/datasteward/dqtracker/internal/entity"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitContext() (*appcontext.Context, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Warn("No .env file found, using environment variables")
	}

	logger, err := InitLogger()
	if err != nil {
		return nil, err
	}

	db, err := InitDB()
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	ctx := &appcontext.Context{
		DB:     db,
		Logger: logger,

		JWTSecret: []byte(secret),
	}

	return ctx, nil
}

func InitDB() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and seeds the read-only lookup tables.
// Categories and severity levels are reference data: the API never
// mutates them, so they are inserted once on an empty database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&entity.User{}, &entity.Category{}, &entity.Severity{}, &entity.Issue{})
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var categoryCount int64
	if err := db.Model(&entity.Category{}).Count(&categoryCount).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if categoryCount == 0 {
		categories := []entity.Category{
			{Name: "Accuracy"},
			{Name: "Completeness"},
			{Name: "Consistency"},
			{Name: "Timeliness"},
			{Name: "Uniqueness"},
			{Name: "Validity"},
		}
		if err := db.Create(&categories).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	var severityCount int64
	if err := db.Model(&entity.Severity{}).Count(&severityCount).Error; err != nil {
		return fmt.Errorf("failed to count severity levels: %w", err)
	}
	if severityCount == 0 {
		severities := []entity.Severity{
			{Name: "Critical", Level: 4, Color: "#dc2626"},
			{Name: "High", Level: 3, Color: "#ea580c"},
			{Name: "Medium", Level: 2, Color: "#ca8a04"},
			{Name: "Low", Level: 1, Color: "#16a34a"},
		}
		if err := db.Create(&severities).Error; err != nil {
			return fmt.Errorf("failed to seed severity levels: %w", err)
		}
	}

	return nil
}

func InitLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
