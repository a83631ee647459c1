package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Services struct {
		AuthServicePort     int
		TrackingServicePort int
	}
	JWT struct {
		SecretKey       string
		AccessTTLMin    int
		RefreshTTLHours int
	}
	OTP struct {
		ExpiryMinutes int
		MaxAttempts   int
	}
}

// AccessTTL returns the configured access-token lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLMin) * time.Minute
}

// RefreshTTL returns the configured refresh-token lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLHours) * time.Hour
}

// OTPExpiry returns the configured passcode lifetime.
func (c *Config) OTPExpiry() time.Duration {
	return time.Duration(c.OTP.ExpiryMinutes) * time.Minute
}

// LoadFromFile loads config from a YAML file, applies defaults, and
// validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	if cfg.Services.AuthServicePort == 0 {
		cfg.Services.AuthServicePort = 3000
	}
	if cfg.Services.TrackingServicePort == 0 {
		cfg.Services.TrackingServicePort = 3001
	}

	if cfg.JWT.AccessTTLMin == 0 {
		cfg.JWT.AccessTTLMin = 120
	}
	if cfg.JWT.RefreshTTLHours == 0 {
		cfg.JWT.RefreshTTLHours = 24 * 7
	}
	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}

	if cfg.OTP.ExpiryMinutes == 0 {
		cfg.OTP.ExpiryMinutes = 5
	}
	if cfg.OTP.MaxAttempts == 0 {
		cfg.OTP.MaxAttempts = 5
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.name is required")
	}

	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	if c.Services.AuthServicePort <= 0 || c.Services.AuthServicePort > 65535 {
		problems = append(problems, "services.auth_service must be in 1..65535")
	}
	if c.Services.TrackingServicePort <= 0 || c.Services.TrackingServicePort > 65535 {
		problems = append(problems, "services.tracking_service must be in 1..65535")
	}

	if c.JWT.AccessTTLMin < 1 {
		problems = append(problems, "jwt.access_ttl_minutes must be >= 1")
	}
	if c.JWT.RefreshTTLHours < 1 {
		problems = append(problems, "jwt.refresh_ttl_hours must be >= 1")
	}

	if c.OTP.ExpiryMinutes < 1 {
		problems = append(problems, "otp.expiry_minutes must be >= 1")
	}
	if c.OTP.MaxAttempts < 1 {
		problems = append(problems, "otp.max_attempts must be >= 1")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
