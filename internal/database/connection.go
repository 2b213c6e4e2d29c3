package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Guyuepp/placevote/internal/config"
	"github.com/Guyuepp/placevote/internal/repository/mysql/model"
)

const (
	dbMaxRetry         = 10
	dbRetryIntervalSec = 2
	slowQueryThreshold = 200 * time.Millisecond
)

// Connect opens the configured database, retrying while it comes up,
// and sizes the connection pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return OpenSQLite(cfg.DBPath)
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	for i := range dbMaxRetry {
		db, err = gorm.Open(dialector, gormConfig())
		if err != nil {
			logrus.Warnf("failed to open connection to database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
		} else {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, fmt.Errorf("failed to get sql.DB from gorm.DB: %w", dbErr)
			}
			err = sqlDB.Ping()
			if err == nil {
				sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
				sqlDB.SetMaxIdleConns(max(cfg.DBMaxConns/2, 1))
				sqlDB.SetConnMaxLifetime(time.Hour)
				logrus.Infof("connected to %s database %s", cfg.DBDriver, cfg.DBName)
				return db, nil
			}
			logrus.Warnf("failed to ping database (attempt %d/%d): %v", i+1, dbMaxRetry, err)
			_ = sqlDB.Close()
		}

		time.Sleep(dbRetryIntervalSec * time.Second)
	}

	return nil, fmt.Errorf("could not connect to database after retries: %w", err)
}

// OpenSQLite opens a file backed SQLite database. SQLite has a single
// writer, so the pool is capped at one connection and transactions queue.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates the tables owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Place{},
		&model.Collection{},
		&model.Vote{},
	)
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "mysql":
		val := url.Values{}
		val.Add("parseTime", "1")
		val.Add("loc", "UTC")
		val.Add("charset", "utf8mb4")
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, val.Encode())
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBPort)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}
