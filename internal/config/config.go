package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 3000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "circle_space"
	defaultRedisURL   = "redis://localhost:6379/0"

	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 365 * 24 * time.Hour
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	DSN            string
	RedisURL       string
	AllowedOrigins []string
	Security       SecurityConfig
	Mail           MailConfig
	S3             S3Config
}

// SecurityConfig carries the two secret pairs and the token lifetimes.
// User-level tokens are signed with the user pair, admin and super-admin
// tokens with the system pair.
type SecurityConfig struct {
	AccessUserSignature    string
	RefreshUserSignature   string
	AccessSystemSignature  string
	RefreshSystemSignature string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	GoogleClientIDs        []string
}

// MailConfig configures the SMTP sender for OTP delivery.
type MailConfig struct {
	Enable bool
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
}

// S3Config configures presigned upload/download links.
type S3Config struct {
	Enable    bool
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

type rawAppConfig struct {
	Port     int      `yaml:"port"`
	Env      string   `yaml:"env"`
	DSN      string   `yaml:"dsn"`
	Database struct {
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`
	RedisURL       string   `yaml:"redis_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Security       struct {
		AccessUserSignature    string `yaml:"access_user_signature"`
		RefreshUserSignature   string `yaml:"refresh_user_signature"`
		AccessSystemSignature  string `yaml:"access_system_signature"`
		RefreshSystemSignature string `yaml:"refresh_system_signature"`
		AccessTokenTTLSeconds  int    `yaml:"access_token_ttl_seconds"`
		RefreshTokenTTLSeconds int    `yaml:"refresh_token_ttl_seconds"`
		GoogleClientIDs        string `yaml:"google_client_ids"`
	} `yaml:"security"`
	Mail struct {
		Enable bool   `yaml:"enable"`
		Host   string `yaml:"host"`
		Port   int    `yaml:"port"`
		User   string `yaml:"user"`
		Pass   string `yaml:"pass"`
		From   string `yaml:"from"`
	} `yaml:"mail"`
	S3 struct {
		Enable    bool   `yaml:"enable"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Endpoint  string `yaml:"endpoint"`
	} `yaml:"s3"`
}

// Load reads and validates the YAML config file.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	cfg := resolve(raw)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Security.AccessUserSignature == "" || cfg.Security.RefreshUserSignature == "" {
		return nil, fmt.Errorf("security.access_user_signature and security.refresh_user_signature are required in %q", path)
	}
	if cfg.Security.AccessSystemSignature == "" || cfg.Security.RefreshSystemSignature == "" {
		return nil, fmt.Errorf("security.access_system_signature and security.refresh_system_signature are required in %q", path)
	}
	return &cfg, nil
}

func resolve(raw rawAppConfig) AppConfig {
	cfg := AppConfig{
		Port:           raw.Port,
		Env:            strings.TrimSpace(raw.Env),
		DSN:            strings.TrimSpace(raw.DSN),
		RedisURL:       strings.TrimSpace(raw.RedisURL),
		AllowedOrigins: raw.AllowedOrigins,
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(raw)
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}

	sec := raw.Security
	cfg.Security = SecurityConfig{
		AccessUserSignature:    sec.AccessUserSignature,
		RefreshUserSignature:   sec.RefreshUserSignature,
		AccessSystemSignature:  sec.AccessSystemSignature,
		RefreshSystemSignature: sec.RefreshSystemSignature,
		AccessTokenTTL:         defaultAccessTTL,
		RefreshTokenTTL:        defaultRefreshTTL,
	}
	if sec.AccessTokenTTLSeconds > 0 {
		cfg.Security.AccessTokenTTL = time.Duration(sec.AccessTokenTTLSeconds) * time.Second
	}
	if sec.RefreshTokenTTLSeconds > 0 {
		cfg.Security.RefreshTokenTTL = time.Duration(sec.RefreshTokenTTLSeconds) * time.Second
	}
	for _, id := range strings.Split(sec.GoogleClientIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.Security.GoogleClientIDs = append(cfg.Security.GoogleClientIDs, id)
		}
	}

	cfg.Mail = MailConfig(raw.Mail)
	cfg.S3 = S3Config(raw.S3)
	return cfg
}

func buildDSN(raw rawAppConfig) string {
	db := raw.Database
	if dsn := strings.TrimSpace(db.DSN); dsn != "" {
		return dsn
	}
	host := db.Host
	if host == "" {
		host = defaultDBHost
	}
	port := db.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := db.User
	if user == "" {
		user = defaultDBUser
	}
	password := db.Password
	if password == "" {
		password = defaultDBPassword
	}
	name := db.Name
	if name == "" {
		name = defaultDBName
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, name)
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }
