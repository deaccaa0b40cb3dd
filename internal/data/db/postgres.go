package db

import (
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/pdfmentor-backend/internal/platform/logger"
)

type PostgresConfig struct {
	// DSN wins over the individual parts when set.
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

func (c PostgresConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(logg *logger.Logger, cfg PostgresConfig) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   NewGormLogger(serviceLog),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewGormLogger routes gorm's slow-query and error output through log.
func NewGormLogger(log *logger.Logger) gormLogger.Interface {
	return gormLogger.New(gormWriter{log: log}, gormLogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	if w.log == nil {
		return
	}
	w.log.Warn("gorm", "detail", fmt.Sprintf(format, args...))
}
