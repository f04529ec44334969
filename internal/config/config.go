package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		PublicBaseURL      string   `yaml:"public_base_url"` // para links en mails
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// postgres | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"` // "0" => sin vencimiento (viven hasta logout)
	} `yaml:"jwt"`

	Keystore struct {
		Path string `yaml:"path"`
		// Key abre el keyfile sellado (base64/hex/raw de 32 bytes).
		// Normalmente llega por env REDDGATE_KEYSTORE_KEY, no por YAML.
		Key string `yaml:"key"`
	} `yaml:"keystore"`

	Mail struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		From    string `yaml:"from"`
		User    string `yaml:"user"`
		Pass    string `yaml:"pass"`
		TLSMode string `yaml:"tls_mode"` // auto | starttls | ssl | none
	} `yaml:"mail"`

	Rate struct {
		Enabled bool   `yaml:"enabled"`
		Kind    string `yaml:"kind"` // redis | memory
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Signup struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"signup"`
	} `yaml:"rate"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = "http://localhost:8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = c.Server.PublicBaseURL
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "0"
	}
	if c.Keystore.Path == "" {
		c.Keystore.Path = "keys/reddgate.key"
	}
	if c.Rate.Kind == "" {
		c.Rate.Kind = "memory"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Signup.Limit == 0 {
		c.Rate.Signup.Limit = 5
	}
	if c.Rate.Signup.Window == "" {
		c.Rate.Signup.Window = "10m"
	}
	if c.Mail.TLSMode == "" {
		c.Mail.TLSMode = "auto"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if d, err := time.ParseDuration(c.JWT.AccessTTL); err != nil || d <= 0 {
		return fmt.Errorf("jwt.access_ttl debe ser una duración positiva, obtuvo %q", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL != "0" {
		if _, err := time.ParseDuration(c.JWT.RefreshTTL); err != nil {
			return fmt.Errorf("jwt.refresh_ttl inválido: %q", c.JWT.RefreshTTL)
		}
	}
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage.driver desconocido: %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn es obligatorio con driver postgres")
	}
	return nil
}

// AccessTTL parsea jwt.access_ttl (ya validado).
func (c *Config) AccessTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTTL)
	return d
}

// RefreshTTL parsea jwt.refresh_ttl; "0" => 0 (sin vencimiento).
func (c *Config) RefreshTTL() time.Duration {
	if c.JWT.RefreshTTL == "0" {
		return 0
	}
	d, _ := time.ParseDuration(c.JWT.RefreshTTL)
	return d
}

// applyEnvOverrides pisa el YAML con env vars REDDGATE_*.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("REDDGATE_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("REDDGATE_PUBLIC_BASE_URL"); ok {
		c.Server.PublicBaseURL = v
	}
	if v, ok := getEnvCSV("REDDGATE_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("REDDGATE_STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("REDDGATE_STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("REDDGATE_JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("REDDGATE_JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("REDDGATE_JWT_REFRESH_TTL"); ok {
		c.JWT.RefreshTTL = v
	}
	if v, ok := getEnvStr("REDDGATE_KEYSTORE_PATH"); ok {
		c.Keystore.Path = v
	}
	if v, ok := getEnvStr("REDDGATE_KEYSTORE_KEY"); ok {
		c.Keystore.Key = v
	}
	if v, ok := getEnvBool("REDDGATE_MAIL_ENABLED"); ok {
		c.Mail.Enabled = v
	}
	if v, ok := getEnvStr("REDDGATE_MAIL_HOST"); ok {
		c.Mail.Host = v
	}
	if v, ok := getEnvInt("REDDGATE_MAIL_PORT"); ok {
		c.Mail.Port = v
	}
	if v, ok := getEnvStr("REDDGATE_MAIL_FROM"); ok {
		c.Mail.From = v
	}
	if v, ok := getEnvStr("REDDGATE_MAIL_USER"); ok {
		c.Mail.User = v
	}
	if v, ok := getEnvStr("REDDGATE_MAIL_PASS"); ok {
		c.Mail.Pass = v
	}
	if v, ok := getEnvBool("REDDGATE_RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("REDDGATE_RATE_KIND"); ok {
		c.Rate.Kind = v
	}
	if v, ok := getEnvStr("REDDGATE_REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDDGATE_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("REDDGATE_APP_ENV"); ok {
		c.App.Env = v
	}
}

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func getEnvBool(key string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, false
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}
