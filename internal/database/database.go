package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sphildreth/melodee/internal/config"
	"github.com/sphildreth/melodee/internal/logger"
)

var DB *gorm.DB

// AllModels returns every persisted model, ordered parent-before-child
// so AutoMigrate creates referenced tables first.
func AllModels() []interface{} {
	return []interface{}{
		&Library{},
		&Artist{},
		&ArtistRelation{},
		&Album{},
		&AlbumDisc{},
		&Song{},
		&Contributor{},
		&LibraryScanHistory{},
		&User{},
		&UserArtist{},
		&UserAlbum{},
		&UserSong{},
		&Player{},
		&Playlist{},
		&PlaylistSong{},
		&PlayQueue{},
		&Bookmark{},
		&Scrobble{},
		&Share{},
		&RadioStation{},
		&Setting{},
	}
}

// Initialize opens the configured database and migrates the schema.
func Initialize() error {
	cfg := config.Get()

	var err error
	switch cfg.Database.Type {
	case "postgres":
		DB, err = connectPostgres(&cfg.Database)
	case "sqlite", "":
		DB, err = connectSQLite(&cfg.Database)
	default:
		return fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := DB.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database initialized", "type", cfg.Database.Type)
	return nil
}

func connectPostgres(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig(cfg))
}

func connectSQLite(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join("data", "melodee.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Cascade deletes depend on the foreign_keys pragma; sqlite ships
	// with it off.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath)
	return gorm.Open(sqlite.Open(dsn), gormConfig(cfg))
}

func gormConfig(cfg *config.DatabaseConfig) *gorm.Config {
	logMode := gormlogger.Silent
	if cfg.LogQueries {
		logMode = gormlogger.Info
	}
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logMode),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// GetDB returns the shared database handle.
func GetDB() *gorm.DB {
	return DB
}

var testDBSeq atomic.Int64

// OpenForTesting opens a throwaway in-memory sqlite database with the
// full schema migrated. Each call returns an isolated database; the
// named shared-cache DSN keeps gorm's connection pool pointed at the
// same in-memory store.
func OpenForTesting() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:melodee_test_%d?mode=memory&cache=shared&_foreign_keys=on",
		testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, err
	}
	return db, nil
}
