package postgres

import "time"

// Config defines the PostgreSQL series store settings.
type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`

	// AutoMigrate creates the sample tables on start.
	AutoMigrate bool `yaml:"auto_migrate" envconfig:"POSTGRES_AUTO_MIGRATE"`
}

type Connection struct {
	Host     string `yaml:"host" envconfig:"POSTGRES_HOST"`
	Port     string `yaml:"port" envconfig:"POSTGRES_PORT"`
	User     string `yaml:"user" envconfig:"POSTGRES_USER"`
	Password string `yaml:"password" envconfig:"POSTGRES_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"POSTGRES_DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"POSTGRES_SSL_MODE"`
}

// ConnectionDetails tunes the connection pool. Zero values fall back to
// 50 open, 25 idle connections and a one minute lifetime.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"POSTGRES_CONN_MAX_LIFETIME"`
}
