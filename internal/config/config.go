package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Email    EmailConfig    `yaml:"email"`
	Docs     DocsConfig     `yaml:"docs"`
	Payment  PaymentConfig  `yaml:"payment"`
	Storage  StorageConfig  `yaml:"storage"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Mode    string `yaml:"mode"`
	BaseURL string `yaml:"base_url"` // public URL used in email links
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Charset)
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort int    `yaml:"smtp_port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// DocsConfig points at the internal document-rendering service that
// turns offer letters, pro-forma invoices and receipts into PDFs.
type DocsConfig struct {
	BaseURL        string `yaml:"base_url"`
	Secret         string `yaml:"secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PaymentConfig identifies this portal to the external payment provider.
type PaymentConfig struct {
	APIClientID string `yaml:"api_client_id"`
	CallbackURL string `yaml:"callback_url"`
}

type StorageConfig struct {
	UploadsDir string `yaml:"uploads_dir"`
	PublicURL  string `yaml:"public_url"`
}

type SecurityConfig struct {
	MaxLoginAttempts int `yaml:"max_login_attempts"`
	LoginLockMinutes int `yaml:"login_lock_minutes"`
	IPMaxAttempts    int `yaml:"ip_max_attempts"`
	IPLockMinutes    int `yaml:"ip_lock_minutes"`

	PasswordMinLength int `yaml:"password_min_length"`

	// Invite and token lifetimes.
	InviteExpiryDays   int `yaml:"invite_expiry_days"`
	TokenExpiryMinutes int `yaml:"token_expiry_minutes"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

var globalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	setDefaults(&cfg)

	if err := validateSecurity(&cfg); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

func Get() *Config {
	return globalConfig
}

// SetForTesting installs a config for tests.
func SetForTesting(cfg *Config) {
	setDefaults(cfg)
	globalConfig = cfg
}

func setDefaults(cfg *Config) {
	if cfg.Security.MaxLoginAttempts == 0 {
		cfg.Security.MaxLoginAttempts = 5
	}
	if cfg.Security.LoginLockMinutes == 0 {
		cfg.Security.LoginLockMinutes = 15
	}
	if cfg.Security.IPMaxAttempts == 0 {
		cfg.Security.IPMaxAttempts = 20
	}
	if cfg.Security.IPLockMinutes == 0 {
		cfg.Security.IPLockMinutes = 30
	}
	if cfg.Security.PasswordMinLength == 0 {
		cfg.Security.PasswordMinLength = 6
	}
	if cfg.Security.InviteExpiryDays == 0 {
		cfg.Security.InviteExpiryDays = 15
	}
	if cfg.Security.TokenExpiryMinutes == 0 {
		cfg.Security.TokenExpiryMinutes = 60
	}
	if cfg.JWT.ExpireHours == 0 {
		cfg.JWT.ExpireHours = 24
	}
	if cfg.Docs.TimeoutSeconds == 0 {
		cfg.Docs.TimeoutSeconds = 30
	}
	if cfg.Storage.UploadsDir == "" {
		cfg.Storage.UploadsDir = "uploads"
	}
}

func validateSecurity(cfg *Config) error {
	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "your-jwt-secret-key-change-in-production" {
		if cfg.Server.Mode == "release" {
			return fmt.Errorf("a secure JWT secret is required in release mode")
		}
		cfg.JWT.Secret = generateRandomSecret(32)
		fmt.Println("[WARNING] using an auto-generated JWT secret; configure one for production")
	}

	if len(cfg.JWT.Secret) < 32 {
		if cfg.Server.Mode == "release" {
			return fmt.Errorf("JWT secret must be at least 32 characters")
		}
		fmt.Println("[WARNING] JWT secret should be at least 32 characters")
	}

	if cfg.Docs.Secret == "" && cfg.Server.Mode == "release" {
		return fmt.Errorf("the document service secret is required in release mode")
	}

	return nil
}

func generateRandomSecret(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
