package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Duration lets YAML carry values like "15m" or "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // postgres | mysql
		DSN    string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		UseTLS       bool   `yaml:"use_tls"`
		Disabled     bool   `yaml:"disabled"`
	} `yaml:"email"`

	JWT struct {
		AccessSecret       string   `yaml:"access_secret"`
		RefreshSecret      string   `yaml:"refresh_secret"`
		AdminAccessSecret  string   `yaml:"admin_access_secret"`
		AdminRefreshSecret string   `yaml:"admin_refresh_secret"`
		AccessTTL          Duration `yaml:"access_ttl"`
		RefreshTTL         Duration `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Session struct {
		TTL Duration `yaml:"ttl"`
	} `yaml:"session"`

	Otp struct {
		TTL         Duration `yaml:"ttl"`
		LinkBaseURL string   `yaml:"link_base_url"`
	} `yaml:"otp"`

	Payment struct {
		Esewa struct {
			MerchantID string `yaml:"merchant_id"`
			SecretKey  string `yaml:"secret_key"`
			BaseURL    string `yaml:"base_url"`
		} `yaml:"esewa"`
		Khalti struct {
			SecretKey  string `yaml:"secret_key"`
			BaseURL    string `yaml:"base_url"`
			ReturnURL  string `yaml:"return_url"`
			WebsiteURL string `yaml:"website_url"`
		} `yaml:"khalti"`
		Timeout Duration `yaml:"timeout"`
	} `yaml:"payment"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
		Burst             int `yaml:"burst"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Scheduler struct {
		JobTimeout    Duration `yaml:"job_timeout"`
		SweepInterval Duration `yaml:"sweep_interval"`
	} `yaml:"scheduler"`

	FirstAdmin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Key      int64  `yaml:"key"`
		IP       string `yaml:"ip"`
	} `yaml:"first_admin"`
}

var AppConfig *Config

// Defaults returns a complete configuration for local development and tests.
func Defaults() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.Env = "development"

	cfg.Database.Driver = "postgres"

	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "no-reply@sajilo.ai"
	cfg.Email.FromName = "Sajilo AI"
	cfg.Email.UseTLS = true

	cfg.JWT.AccessSecret = "dev-access-secret"
	cfg.JWT.RefreshSecret = "dev-refresh-secret"
	cfg.JWT.AdminAccessSecret = "dev-admin-access-secret"
	cfg.JWT.AdminRefreshSecret = "dev-admin-refresh-secret"
	cfg.JWT.AccessTTL = Duration{15 * time.Minute}
	cfg.JWT.RefreshTTL = Duration{7 * 24 * time.Hour}

	cfg.Session.TTL = Duration{7 * 24 * time.Hour}

	cfg.Otp.TTL = Duration{5 * time.Minute}
	cfg.Otp.LinkBaseURL = "http://localhost:5173/login/"

	cfg.Payment.Esewa.MerchantID = "EPAYTEST"
	cfg.Payment.Esewa.BaseURL = "https://rc.esewa.com.np"
	cfg.Payment.Khalti.BaseURL = "https://dev.khalti.com"
	cfg.Payment.Khalti.ReturnURL = "http://localhost:5173/payment/khalti"
	cfg.Payment.Khalti.WebsiteURL = "http://localhost:5173"
	cfg.Payment.Timeout = Duration{15 * time.Second}

	cfg.RateLimit.RequestsPerMinute = 5
	cfg.RateLimit.Burst = 5

	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}

	cfg.Scheduler.JobTimeout = Duration{30 * time.Second}
	cfg.Scheduler.SweepInterval = Duration{time.Hour}

	return &cfg
}

// Load reads the YAML file at path on top of Defaults and then applies environment overrides.
// A missing file is not an error when DATABASE_URL is set.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := Decode(f, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("DATABASE_URL") != "":
	default:
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode merges YAML from r into cfg.
func Decode(r io.Reader, cfg *Config) error {
	err := yaml.NewDecoder(r).Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")

	setString(&cfg.JWT.AccessSecret, "JWT_ACCESS_SECRET")
	setString(&cfg.JWT.RefreshSecret, "JWT_REFRESH_SECRET")
	setString(&cfg.JWT.AdminAccessSecret, "JWT_ADMIN_ACCESS_SECRET")
	setString(&cfg.JWT.AdminRefreshSecret, "JWT_ADMIN_REFRESH_SECRET")

	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")

	setString(&cfg.Payment.Esewa.MerchantID, "ESEWA_MERCHANT_ID")
	setString(&cfg.Payment.Esewa.SecretKey, "ESEWA_SECRET_KEY")
	setString(&cfg.Payment.Esewa.BaseURL, "ESEWA_BASE_URL")
	setString(&cfg.Payment.Khalti.SecretKey, "KHALTI_SECRET_KEY")
	setString(&cfg.Payment.Khalti.BaseURL, "KHALTI_BASE_URL")

	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.CORS.AllowedOrigins = strings.Split(v, ",")
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database url is required")
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" ||
		c.JWT.AdminAccessSecret == "" || c.JWT.AdminRefreshSecret == "" {
		return errors.New("jwt secrets are required")
	}
	if c.JWT.AdminAccessSecret == c.JWT.AccessSecret {
		return errors.New("admin and user access secrets must differ")
	}
	if c.Session.TTL.Duration <= 0 || c.Otp.TTL.Duration <= 0 {
		return errors.New("session and otp ttl must be positive")
	}
	return nil
}

// LoadConfig loads the global configuration from CONFIG_PATH (default config/config.yaml).
func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	AppConfig = cfg
	return cfg, nil
}

func GetConfig() *Config {
	if AppConfig == nil {
		return Defaults()
	}
	return AppConfig
}
