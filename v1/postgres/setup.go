package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Aleph-Alpha/pbseries/v1/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const healthCheckInterval = 10 * time.Second

// Postgres is the PostgreSQL series store. It wraps gorm.DB with connection
// monitoring and automatic reconnection.
//
// Concurrency: the active *gorm.DB is kept in an atomic pointer and swapped
// during reconnection without blocking writers.
type Postgres struct {
	cfg             Config
	logger          logger.Interface
	client          atomic.Pointer[gorm.DB]
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeShutdownOnce sync.Once
}

// NewPostgres connects to PostgreSQL and returns the store.
func NewPostgres(cfg Config, log logger.Interface) (*Postgres, error) {
	conn, err := connectToPostgres(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to postgres: %w", err)
	}

	pg := &Postgres{
		cfg:             cfg,
		logger:          log,
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	pg.client.Store(conn)
	log.Info("Connected to PostgreSQL", nil, map[string]interface{}{
		"host":     cfg.Connection.Host,
		"database": cfg.Connection.DbName,
	})
	return pg, nil
}

// connectToPostgres opens a GORM connection and configures the pool.
func connectToPostgres(cfg Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Connection.Host,
		cfg.Connection.Port,
		cfg.Connection.User,
		cfg.Connection.Password,
		cfg.Connection.DbName,
		cfg.Connection.SSLMode)

	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL database instance: %w", err)
	}

	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 50
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 25
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = time.Minute
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)

	return database, nil
}

// DB returns the current connection.
func (p *Postgres) DB() *gorm.DB {
	return p.client.Load()
}

// RetryConnection waits for a failure signal from MonitorConnection and then
// reconnects until it succeeds. It returns on ctx cancellation or Close.
func (p *Postgres) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case err := <-p.retryChanSignal:
			p.logger.Warn("PostgreSQL health check failed, reconnecting", err, nil)
		innerLoop:
			for {
				select {
				case <-p.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
				}

				newConn, err := connectToPostgres(p.cfg)
				if err != nil {
					p.logger.Error("PostgreSQL reconnection failed", err, nil)
					select {
					case <-time.After(time.Second):
					case <-p.shutdownSignal:
						return
					}
					continue innerLoop
				}

				old := p.client.Swap(newConn)
				if sqlDB, err := old.DB(); err == nil {
					_ = sqlDB.Close()
				}
				p.logger.Info("Reconnected to PostgreSQL", nil, nil)
				continue outerLoop
			}
		}
	}
}

// MonitorConnection pings the database every healthCheckInterval and signals
// RetryConnection on failure.
func (p *Postgres) MonitorConnection(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.healthCheck(ctx); err != nil {
				select {
				case p.retryChanSignal <- err:
				default:
				}
			}
		}
	}
}

func (p *Postgres) healthCheck(ctx context.Context) error {
	dbConn := p.DB()
	if dbConn == nil {
		return ErrNotConnected
	}

	db, err := dbConn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", TranslateError(err))
	}
	return nil
}

// Close stops the monitor loops and closes the connection pool.
func (p *Postgres) Close() error {
	p.closeShutdownOnce.Do(func() {
		close(p.shutdownSignal)
	})

	sqlDB, err := p.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
