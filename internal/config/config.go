package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL    string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	StorageBucket  string   `mapstructure:"STORAGE_BUCKET"`
	AWSRegion      string   `mapstructure:"AWS_REGION"`
	RoleCachePath  string   `mapstructure:"ROLE_CACHE_PATH"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	DemoSeed       bool     `mapstructure:"DEMO_SEED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("ROLE_CACHE_PATH", ".portal-state")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("DEMO_SEED", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("STORAGE_BUCKET")
	v.BindEnv("AWS_REGION")
	v.BindEnv("ROLE_CACHE_PATH")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("DEMO_SEED")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Values arrive from dotenv files with stray quotes and whitespace
	// often enough that they are scrubbed before use.
	cfg.Port = Clean(cfg.Port)
	cfg.DatabaseURL = Clean(cfg.DatabaseURL)
	cfg.AuthIssuer = Clean(cfg.AuthIssuer)
	cfg.AuthJWKSURL = Clean(cfg.AuthJWKSURL)
	cfg.AuthAudience = Clean(cfg.AuthAudience)
	cfg.StorageBucket = Clean(cfg.StorageBucket)
	cfg.AWSRegion = Clean(cfg.AWSRegion)
	cfg.RoleCachePath = Clean(cfg.RoleCachePath)

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = Clean(o)
	}

	// Missing backend settings are warned about rather than fatal: the
	// server still starts so the diag tooling can be used to figure out
	// what is wrong.
	if cfg.DatabaseURL == "" {
		log.Println("WARNING: DATABASE_URL is not set; database-backed routes will fail")
	}
	if cfg.AuthIssuer == "" && cfg.IsProduction() {
		log.Println("WARNING: AUTH_ISSUER is not set; token verification is disabled")
	}
	if cfg.AuthJWKSURL == "" && cfg.AuthIssuer != "" {
		cfg.AuthJWKSURL = strings.TrimRight(cfg.AuthIssuer, "/") + "/protocol/openid-connect/certs"
	}

	return cfg, nil
}

// Clean trims whitespace and strips a single pair of surrounding quotes.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
