package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storefront StorefrontConfig `yaml:"storefront"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
}

type ServerConfig struct {
	Port               int           `yaml:"port"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
}

// StorefrontConfig holds the two remote endpoints owned by deployment.
type StorefrontConfig struct {
	MenuEndpoint   string        `yaml:"menu_endpoint"`
	OrderEndpoint  string        `yaml:"order_endpoint"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DatabaseConfig locates the dispatch journal and sizes its pool. The
// journal sees one write per submission, so the pool stays small.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int           `yaml:"max_conns"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// Enabled reports whether the dispatch journal should be backed by PostgreSQL.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	// ConnectionName is shown in the broker's management UI.
	ConnectionName string        `yaml:"connection_name"`
	Heartbeat      time.Duration `yaml:"heartbeat"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
}

func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}

func (c RabbitMQConfig) URL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.VHost,
	}
	return u.String()
}

// Load reads the YAML file at path, then applies environment overrides.
// A .env file next to the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	return LoadWithEnvFile(path, ".env")
}

func LoadWithEnvFile(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               3000,
			SessionIdleTimeout: 30 * time.Minute,
		},
		Storefront: StorefrontConfig{
			RequestTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxConns:        4,
			MaxConnIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		RabbitMQ: RabbitMQConfig{
			Port:           5672,
			ConnectionName: "storefront",
			Heartbeat:      10 * time.Second,
			ConfirmTimeout: 5 * time.Second,
		},
	}
}

func (c *Config) Validate() error {
	if c.Storefront.MenuEndpoint == "" {
		return errors.New("storefront.menu_endpoint is required")
	}
	if c.Storefront.OrderEndpoint == "" {
		return errors.New("storefront.order_endpoint is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Enabled() && c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be positive, got %d", c.Database.MaxConns)
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.ConfirmTimeout <= 0 {
		return errors.New("rabbitmq.confirm_timeout must be positive")
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storefront.MenuEndpoint, "STOREFRONT_MENU_ENDPOINT")
	setString(&c.Storefront.OrderEndpoint, "STOREFRONT_ORDER_ENDPOINT")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&c.RabbitMQ.User, "RABBITMQ_USER")
	setString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	setString(&c.RabbitMQ.VHost, "RABBITMQ_VHOST")

	if err := setInt(&c.Server.Port, "STOREFRONT_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Database.MaxConns, "DB_MAX_CONNS"); err != nil {
		return err
	}
	if err := setInt(&c.RabbitMQ.Port, "RABBITMQ_PORT"); err != nil {
		return err
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&c.Storefront.RequestTimeout, "STOREFRONT_REQUEST_TIMEOUT"},
		{&c.Database.ConnectTimeout, "DB_CONNECT_TIMEOUT"},
		{&c.RabbitMQ.Heartbeat, "RABBITMQ_HEARTBEAT"},
		{&c.RabbitMQ.ConfirmTimeout, "RABBITMQ_CONFIRM_TIMEOUT"},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.key); err != nil {
			return err
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}
