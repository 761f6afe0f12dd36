package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`

	MongoURI  string `yaml:"mongo_uri"`
	ControlDB string `yaml:"control_db"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	JWTSecret string `yaml:"jwt_secret"`
	DevTokens bool   `yaml:"dev_tokens"`

	EventsStrict bool   `yaml:"events_strict"`
	EventsPrefix string `yaml:"events_prefix"`

	UploadDir       string        `yaml:"upload_dir"`
	QRSecret        string        `yaml:"qr_secret"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	TranslationsDir string        `yaml:"translations_dir"`
}

func Defaults() Config {
	return Config{
		Env:            "development",
		Port:           ":8080",
		MongoURI:       "mongodb://localhost:27017",
		ControlDB:      "cruise_control",
		RedisAddr:      "localhost:6379",
		JWTSecret:      "dev-secret-change-me",
		DevTokens:      true,
		EventsPrefix:   "cruise.events",
		UploadDir:      "static/uploads",
		QRSecret:       "dev-qr-secret",
		SweepInterval:  time.Minute,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// Load reads .env (if present), an optional YAML file named by CONFIG_FILE, then
// environment variables. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if cfg.Port != "" && cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.IsProduction() && cfg.JWTSecret == Defaults().JWTSecret {
		return cfg, fmt.Errorf("JWT_SECRET must be set in production")
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ENV", &cfg.Env)
	str("PORT", &cfg.Port)
	str("MONGO_URI", &cfg.MongoURI)
	str("CONTROL_DB", &cfg.ControlDB)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("EVENTS_PREFIX", &cfg.EventsPrefix)
	str("UPLOAD_DIR", &cfg.UploadDir)
	str("QR_SECRET", &cfg.QRSecret)
	str("TRANSLATIONS_DIR", &cfg.TranslationsDir)

	if v, ok := lookup("ENV"); ok && strings.EqualFold(v, "production") {
		if _, set := lookup("DEV_TOKENS"); !set {
			cfg.DevTokens = false
		}
	}

	var err error
	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
	}
	if v, ok := lookup("DEV_TOKENS"); ok && v != "" {
		cfg.DevTokens = parseBool(v)
	}
	if v, ok := lookup("EVENTS_STRICT"); ok && v != "" {
		cfg.EventsStrict = parseBool(v)
	}
	if v, ok := lookup("SWEEP_INTERVAL"); ok && v != "" {
		if cfg.SweepInterval, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("SWEEP_INTERVAL: %w", err)
		}
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		if cfg.RateLimitBurst, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
	}
	return nil
}

// parseBool accepts the usual truthy spellings (1, true, yes, on).
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
