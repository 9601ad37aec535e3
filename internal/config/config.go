package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "folio_space"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0
)

// AppConfig holds runtime startup configuration loaded from YAML. Behavioural
// site options (mail credentials, feature flags, ...) live in the database
// instead, see SiteConfig.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"` // "development" | "production"
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	Timezone       string                `yaml:"timezone"`
}

type DatabaseRuntimeConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
	}
}

// Load reads the YAML config at path. A missing file yields the defaults so
// the server can boot with a stock local MySQL/redis.
func Load(path string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	return cfg, nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// DSNValue assembles the MySQL DSN, preferring an explicit dsn string over
// the discrete host/port fields.
func (c *AppConfig) DSNValue() string {
	if dsn := strings.TrimSpace(c.Database.DSN); dsn != "" {
		return dsn
	}

	host := valueOr(c.Database.Host, defaultDBHost)
	port := c.Database.Port
	if port <= 0 {
		port = defaultDBPort
	}
	user := valueOr(c.Database.User, defaultDBUser)
	pass := c.Database.Password
	if pass == "" {
		pass = defaultDBPassword
	}
	name := valueOr(c.Database.Name, defaultDBName)
	charset := valueOr(c.Database.Charset, defaultDBCharset)
	loc := valueOr(c.Database.Loc, defaultDBLoc)

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=%s",
		user, pass, host, port, name, charset, url.QueryEscape(loc))
}

// RedisURLValue assembles the redis URL, preferring an explicit url string.
func (c *AppConfig) RedisURLValue() string {
	if u := strings.TrimSpace(c.Redis.URL); u != "" {
		return u
	}

	host := valueOr(c.Redis.Host, defaultRedisHost)
	port := c.Redis.Port
	if port <= 0 {
		port = defaultRedisPort
	}
	db := c.Redis.DB
	if db < 0 {
		db = defaultRedisDB
	}

	u := url.URL{
		Scheme: "redis",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   fmt.Sprintf("/%d", db),
	}
	if c.Redis.Username != "" || c.Redis.Password != "" {
		u.User = url.UserPassword(c.Redis.Username, c.Redis.Password)
	}
	return u.String()
}

func valueOr(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
