package config

import (
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBTimezone     string `mapstructure:"DB_TIMEZONE"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	LogFile  string `mapstructure:"LOG_FILE"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	RedisURL                  string `mapstructure:"REDIS_URL"`
	RateLimitPrefix           string `mapstructure:"RATE_LIMIT_PREFIX"`
	RequestRateLimitPerMinute int    `mapstructure:"REQUEST_RATE_LIMIT_PER_MINUTE"`

	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`

	DonorRewardPoints   int    `mapstructure:"DONOR_REWARD_POINTS"`
	DefaultQuantityUnit string `mapstructure:"DEFAULT_QUANTITY_UNIT"`
	ExpirySweepSchedule string `mapstructure:"EXPIRY_SWEEP_SCHEDULE"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                   "8080",
	"DATABASE_URL":                  "",
	"DB_HOST":                       "localhost",
	"DB_PORT":                       "5432",
	"DB_USER":                       "postgres",
	"DB_PASSWORD":                   "password",
	"DB_NAME":                       "surplus2share",
	"DB_SSLMODE":                    "disable",
	"DB_TIMEZONE":                   "UTC",
	"DB_MAX_OPEN_CONNS":             20,
	"JWT_SECRET":                    "supersecret",
	"JWT_TTL_HOURS":                 168,
	"LOG_FILE":                      "./logs/app.log",
	"LOG_LEVEL":                     "info",
	"CORS_ALLOWED_ORIGINS":          "*",
	"REDIS_URL":                     "",
	"RATE_LIMIT_PREFIX":             "surplus2share:rate_limit",
	"REQUEST_RATE_LIMIT_PER_MINUTE": 20,
	"RABBITMQ_URL":                  "",
	"EVENTS_EXCHANGE":               "donation_events",
	"DONOR_REWARD_POINTS":           10,
	"DEFAULT_QUANTITY_UNIT":         "kg",
	"EXPIRY_SWEEP_SCHEDULE":         "",
}

// Load reads an optional .env file from path, then the environment.
// Environment variables win over the file.
func Load(path string) (cfg Config, err error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("PORT")

	if err = v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if port := strings.TrimSpace(v.GetString("PORT")); port != "" {
		cfg.ServerPort = port
	}
	cfg.RedisURL = strings.TrimSpace(cfg.RedisURL)
	cfg.RabbitMQURL = strings.TrimSpace(cfg.RabbitMQURL)
	cfg.ExpirySweepSchedule = strings.TrimSpace(cfg.ExpirySweepSchedule)
	if strings.TrimSpace(cfg.DefaultQuantityUnit) == "" {
		cfg.DefaultQuantityUnit = "kg"
	}

	cfg.DonorRewardPoints = positiveOr(cfg.DonorRewardPoints, 10, "DONOR_REWARD_POINTS")
	cfg.JWTTTLHours = positiveOr(cfg.JWTTTLHours, 168, "JWT_TTL_HOURS")
	cfg.RequestRateLimitPerMinute = positiveOr(cfg.RequestRateLimitPerMinute, 20, "REQUEST_RATE_LIMIT_PER_MINUTE")
	cfg.DBMaxOpenConns = positiveOr(cfg.DBMaxOpenConns, 20, "DB_MAX_OPEN_CONNS")

	if cfg.JWTSecret == defaults["JWT_SECRET"] {
		logrus.Warn("JWT_SECRET not set, using the development fallback")
	}
	return cfg, nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func positiveOr(value, fallback int, key string) int {
	if value > 0 {
		return value
	}
	logrus.WithFields(logrus.Fields{"key": key, "value": value}).Warn("non-positive config value, using default")
	return fallback
}
