package gormstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite         = "sqlite"
	DriverPostgres       = "postgres"
	DriverMySQL          = "mysql"
	defaultSQLiteFile    = "lodging.db"
	sqliteMemory         = ":memory:"
	sqliteBusyPragma     = "_pragma=busy_timeout(5000)"
	mysqlScheme          = "mysql://"
	sqliteScheme         = "sqlite://"
	postgresScheme       = "postgres://"
	postgresSchemeLong   = "postgresql://"
	sqliteMaxOpenConns   = 1
	errorSubjectDatabase = "database"
	errorCodeOpen        = "open"
	errorCodeMigrate     = "migrate"
)

// Database bundles an open connection with its driver name.
type Database struct {
	DB     *gorm.DB
	Driver string
}

// Close releases the underlying connection pool.
func (database Database) Close() error {
	sqlDB, err := database.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open connects to the database named by dsn. Supported forms are postgres:// URLs,
// mysql:// DSNs, sqlite:// URLs, and bare SQLite file paths.
func Open(ctx context.Context, dsn string) (Database, error) {
	driver, target, err := ResolveDriver(dsn)
	if err != nil {
		return Database{}, err
	}
	config := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	var db *gorm.DB
	switch driver {
	case DriverPostgres:
		db, err = gorm.Open(postgres.Open(target), config)
	case DriverMySQL:
		db, err = gorm.Open(gormmysql.Open(target), config)
	case DriverSQLite:
		db, err = gorm.Open(sqlite.Open(target), config)
	default:
		return Database{}, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return Database{}, wrapStoreError(errorSubjectDatabase, errorCodeOpen, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return Database{}, wrapStoreError(errorSubjectDatabase, errorCodeOpen, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer.
		sqlDB.SetMaxOpenConns(sqliteMaxOpenConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return Database{}, wrapStoreError(errorSubjectDatabase, errorCodeOpen, err)
	}
	return Database{DB: db.WithContext(ctx), Driver: driver}, nil
}

// Migrate creates or updates every table used by the lodging and reminder stores.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return wrapStoreError(errorSubjectDatabase, errorCodeMigrate, err)
	}
	return nil
}

// ResolveDriver returns the driver name and the driver-specific connection target for dsn.
func ResolveDriver(dsn string) (string, string, error) {
	trimmed := strings.TrimSpace(dsn)
	switch {
	case trimmed == "":
		return "", "", fmt.Errorf("database url is required")
	case strings.HasPrefix(trimmed, postgresScheme), strings.HasPrefix(trimmed, postgresSchemeLong):
		return DriverPostgres, trimmed, nil
	case strings.HasPrefix(trimmed, mysqlScheme):
		target, err := normalizeMySQLDSN(strings.TrimPrefix(trimmed, mysqlScheme))
		return DriverMySQL, target, err
	case strings.HasPrefix(trimmed, sqliteScheme):
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := parsed.Path
		if path == "" {
			path = parsed.Host
		}
		if path == "" || path == "/" {
			path = defaultSQLiteFile
		}
		target, err := normalizeSQLitePath(path)
		return DriverSQLite, target, err
	}
	target, err := normalizeSQLitePath(trimmed)
	return DriverSQLite, target, err
}

// normalizeMySQLDSN forces parseTime for DATE columns and clientFoundRows so that
// updates which change nothing still report the matched row.
func normalizeMySQLDSN(dsn string) (string, error) {
	config, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	config.ParseTime = true
	config.ClientFoundRows = true
	return config.FormatDSN(), nil
}

func normalizeSQLitePath(path string) (string, error) {
	if path == sqliteMemory {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(".", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path + "?" + sqliteBusyPragma, nil
}
