package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// Config groups every setting of the importer. Values come from an optional
// config file and environment variables; the environment wins.
type Config struct {
	App       AppConfig
	Unleashed UnleashedConfig
	DB        DBConfig
	Redis     RedisConfig
	Sync      SyncConfig
	Serve     ServeConfig
	Log       LogConfig
}

// AppConfig holds general settings.
type AppConfig struct {
	Env string // development, production
}

// UnleashedConfig holds API credentials and client tuning.
type UnleashedConfig struct {
	BaseURL    string
	APIID      string
	APIKey     string
	ClientType string
	PageSize   int
	RateLimit  float64 // requests per second, 0 disables
	Timeout    time.Duration
}

// DBConfig holds database settings. DatabaseURL, when set, is used verbatim.
type DBConfig struct {
	Driver       string // postgres, sqlserver, sqlite
	DatabaseURL  string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string // database name, or file path for sqlite
	SSLMode      string
	MaxOpenConns int
}

// RedisConfig holds the optional lock backend.
type RedisConfig struct {
	URL string
}

// SyncConfig holds run behavior.
type SyncConfig struct {
	// CommitMode "page" commits each page in one transaction, so a failed
	// insert also rolls back the earlier lines of that page. "row" commits
	// every line on its own and keeps everything before the failure.
	CommitMode domain.CommitMode
	RunLogPath string // empty means logs.txt next to the executable
	RunHistory bool
	DryRun     bool
}

// ServeConfig holds settings of the long-running serve mode.
type ServeConfig struct {
	Addr       string
	Interval   time.Duration
	AuthSecret string // empty disables bearer token checks
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

var defaults = map[string]any{
	"APP_ENV":                "production",
	"UNLEASHED_API_URL":      "https://api.unleashedsoftware.com",
	"UNLEASHED_PAGE_SIZE":    domain.DefaultPageSize,
	"UNLEASHED_RATE_LIMIT":   0,
	"UNLEASHED_HTTP_TIMEOUT": "60s",
	"DB_DRIVER":              "sqlserver",
	"DB_HOST":                "localhost",
	"DB_SSLMODE":             "disable",
	"DB_MAX_OPEN_CONNS":      4,
	"COMMIT_MODE":            string(domain.CommitPerPage),
	"RUN_HISTORY":            false,
	"DRY_RUN":                false,
	"SERVE_ADDR":             ":8080",
	"SYNC_INTERVAL":          "1h",
	"LOG_LEVEL":              "info",
}

// Load reads configuration. When path is empty a .env file in the working
// directory is used if present. Keys are the environment variable names.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read .env: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	return &Config{
		App: AppConfig{
			Env: v.GetString("APP_ENV"),
		},
		Unleashed: UnleashedConfig{
			BaseURL:    v.GetString("UNLEASHED_API_URL"),
			APIID:      v.GetString("UNLEASHED_API_ID"),
			APIKey:     v.GetString("UNLEASHED_API_KEY"),
			ClientType: v.GetString("UNLEASHED_CLIENT_TYPE"),
			PageSize:   v.GetInt("UNLEASHED_PAGE_SIZE"),
			RateLimit:  v.GetFloat64("UNLEASHED_RATE_LIMIT"),
			Timeout:    v.GetDuration("UNLEASHED_HTTP_TIMEOUT"),
		},
		DB: DBConfig{
			Driver:       v.GetString("DB_DRIVER"),
			DatabaseURL:  v.GetString("DATABASE_URL"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Sync: SyncConfig{
			CommitMode: domain.CommitMode(v.GetString("COMMIT_MODE")),
			RunLogPath: v.GetString("RUN_LOG_PATH"),
			RunHistory: v.GetBool("RUN_HISTORY"),
			DryRun:     v.GetBool("DRY_RUN"),
		},
		Serve: ServeConfig{
			Addr:       v.GetString("SERVE_ADDR"),
			Interval:   v.GetDuration("SYNC_INTERVAL"),
			AuthSecret: v.GetString("SERVE_AUTH_SECRET"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...))
	}

	if c.Unleashed.APIID == "" {
		invalid("UNLEASHED_API_ID is required")
	}
	if c.Unleashed.APIKey == "" {
		invalid("UNLEASHED_API_KEY is required")
	}
	if c.Unleashed.PageSize <= 0 || c.Unleashed.PageSize > domain.DefaultPageSize {
		invalid("UNLEASHED_PAGE_SIZE must be between 1 and %d, got %d", domain.DefaultPageSize, c.Unleashed.PageSize)
	}
	if c.Unleashed.RateLimit < 0 {
		invalid("UNLEASHED_RATE_LIMIT must not be negative")
	}
	if _, err := url.ParseRequestURI(c.Unleashed.BaseURL); err != nil {
		invalid("UNLEASHED_API_URL %q is not a URL", c.Unleashed.BaseURL)
	}
	if !c.Sync.CommitMode.Valid() {
		invalid("COMMIT_MODE %q is not one of page, row", c.Sync.CommitMode)
	}

	return errors.Join(append(errs, c.ValidateDatabase())...)
}

// ValidateDatabase checks only the settings needed to open the database.
func (c *Config) ValidateDatabase() error {
	var errs []error

	switch c.DB.Driver {
	case "postgres", "sqlserver", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("%w: DB_DRIVER %q is not one of postgres, sqlserver, sqlite", domain.ErrInvalidInput, c.DB.Driver))
	}
	if c.DB.DatabaseURL == "" && c.DB.Name == "" {
		errs = append(errs, fmt.Errorf("%w: DATABASE_URL or DB_NAME is required", domain.ErrInvalidInput))
	}

	return errors.Join(errs...)
}

// ValidateServe checks everything Validate does plus the serve settings.
func (c *Config) ValidateServe() error {
	errs := []error{c.Validate()}

	if c.Serve.Addr == "" {
		errs = append(errs, fmt.Errorf("%w: SERVE_ADDR is required", domain.ErrInvalidInput))
	}
	if c.Serve.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: SYNC_INTERVAL must be positive, got %s", domain.ErrInvalidInput, c.Serve.Interval))
	}

	return errors.Join(errs...)
}

// ConnectionString returns DatabaseURL when set, otherwise a DSN built for
// the configured driver.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	switch c.Driver {
	case "sqlite":
		return c.Name
	case "sqlserver":
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + strconv.Itoa(c.portOr(1433)),
			RawQuery: url.Values{"database": {c.Name}}.Encode(),
		}
		return u.String()
	default:
		u := &url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + strconv.Itoa(c.portOr(5432)),
			Path:     "/" + c.Name,
			RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
		}
		return u.String()
	}
}

func (c DBConfig) portOr(def int) int {
	if c.Port > 0 {
		return c.Port
	}
	return def
}
