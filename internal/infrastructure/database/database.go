package database

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func gormConfig(cfg *config.Config) *gorm.Config {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}
	return &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open connects to the relational run store selected by RUN_STORE
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, string, error) {
	switch cfg.RunStore.Driver {
	case config.StorePostgres:
		db, err := NewPostgresDB(cfg, log)
		return db, "postgres", err
	case config.StoreSQLite:
		db, err := NewSQLiteDB(cfg, cfg.RunStore.SQLitePath, log)
		return db, "sqlite3", err
	default:
		return nil, "", fmt.Errorf("RUN_STORE %q is not a relational store", cfg.RunStore.Driver)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection using GORM
func NewPostgresDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if log != nil {
		log.Info("✅ Database connected successfully", zap.String("driver", "postgres"))
	}
	return db, nil
}

// NewSQLiteDB opens a single-connection SQLite database at path
func NewSQLiteDB(cfg *config.Config, path string, log *zap.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if log != nil {
		log.Info("✅ Database connected successfully", zap.String("driver", "sqlite"), zap.String("path", path))
	}
	return db, nil
}

// AutoMigrate applies the embedded migrations with sql-migrate.
// dialect is "postgres" or "sqlite3".
func AutoMigrate(db *gorm.DB, dialect string, log *zap.Logger) error {
	n, err := Migrate(db, dialect, migrate.Up, 0)
	if err != nil {
		return err
	}

	if log != nil {
		log.Info("✅ Applied migrations", zap.Int("count", n), zap.String("dialect", dialect))
	}
	return nil
}

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFS,
		Root:       "migrations",
	}
}

// Migrate applies up to max embedded migrations in the given direction; max 0 means all
func Migrate(db *gorm.DB, dialect string, dir migrate.MigrationDirection, max int) (int, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate, error: %v", err)
	}

	n, err := migrate.ExecMax(sqlDB, dialect, migrationSource(), dir, max)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migration, error: %v", err)
	}
	return n, nil
}

// MigrationState reports whether one embedded migration has been applied
type MigrationState struct {
	ID        string
	AppliedAt *time.Time
}

// MigrationStatus lists every embedded migration with its applied time
func MigrationStatus(db *gorm.DB, dialect string) ([]MigrationState, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get db connection during migrate status, error: %v", err)
	}

	all, err := migrationSource().FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	records, err := migrate.GetMigrationRecords(sqlDB, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration records: %w", err)
	}
	applied := make(map[string]time.Time, len(records))
	for _, r := range records {
		applied[r.Id] = r.AppliedAt
	}

	states := make([]MigrationState, 0, len(all))
	for _, m := range all {
		st := MigrationState{ID: m.Id}
		if at, ok := applied[m.Id]; ok {
			st.AppliedAt = &at
		}
		states = append(states, st)
	}
	return states, nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
