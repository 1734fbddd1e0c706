package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"diamond-dashboard/internal/store"
)

// Config holds all dashboard configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
	Publish   PublishConfig   `yaml:"publish"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
	SessionName   string `yaml:"session_name"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

type DashboardConfig struct {
	Title string `yaml:"title"`
	TopN  int    `yaml:"top_n"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// PublishConfig points at the S3-compatible bucket that receives page
// snapshots.
type PublishConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8050",
			SessionSecret: "change-me-diamond-dashboard",
			SessionName:   "diamond-dashboard",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "project_diamond.db",
		},
		Dashboard: DashboardConfig{
			Title: "Diamond Project",
			TopN:  10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Publish: PublishConfig{
			Bucket: "diamond-dashboard",
		},
	}
}

// Load reads the YAML file at path over the defaults, then a .env file if
// one exists, then environment overrides. A missing config file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// Optional. Variables already set in the environment win.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "DIAMOND_DB_DRIVER")
	setString(&c.Database.DSN, "DIAMOND_DB_DSN")
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.SessionSecret, "SESSION_SECRET")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Publish.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Publish.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Publish.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Publish.Bucket, "SNAPSHOT_BUCKET")

	if v, ok := os.LookupEnv("MINIO_USE_SSL"); ok {
		c.Publish.UseSSL = v == "true"
	}
	if v, ok := os.LookupEnv("DIAMOND_TOP_N"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DIAMOND_TOP_N: %w", err)
		}
		c.Dashboard.TopN = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if _, err := store.DriverName(c.Database.Driver); err != nil {
		return err
	}
	if c.Dashboard.TopN <= 0 {
		return fmt.Errorf("dashboard.top_n must be positive, got %d", c.Dashboard.TopN)
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}

// ValidatePublish checks the settings the publish command needs.
func (c *Config) ValidatePublish() error {
	p := c.Publish
	if p.Endpoint == "" || p.AccessKey == "" || p.SecretKey == "" {
		return errors.New("missing one or more required settings: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}
	if p.Bucket == "" {
		return errors.New("publish.bucket is required")
	}
	return nil
}
