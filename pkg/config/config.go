package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Unknown-weekday policies for categories whose name carries no weekday word.
const (
	UnknownWeekdayEmpty   = "empty"
	UnknownWeekdayDefault = "default"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Billing     BillingConfig
	Schedule    ScheduleConfig
	Dashboard   DashboardConfig
	PaymentLink PaymentLinkConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BillingConfig carries the tuition thresholds used by payment reconciliation.
type BillingConfig struct {
	PricePerClass       float64
	LateDayThreshold    int
	MinAcceptableAmount float64
}

// ScheduleConfig controls class-date generation for categories without a
// recognisable weekday in their name.
type ScheduleConfig struct {
	UnknownWeekdayPolicy string
	DefaultWeekday       int
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// PaymentLinkConfig points at the external payment-link backend.
type PaymentLinkConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Billing = BillingConfig{
		PricePerClass:       v.GetFloat64("BILLING_PRICE_PER_CLASS"),
		LateDayThreshold:    v.GetInt("BILLING_LATE_DAY_THRESHOLD"),
		MinAcceptableAmount: v.GetFloat64("BILLING_MIN_ACCEPTABLE_AMOUNT"),
	}

	policy := strings.ToLower(v.GetString("SCHEDULE_UNKNOWN_WEEKDAY_POLICY"))
	if policy != UnknownWeekdayDefault {
		policy = UnknownWeekdayEmpty
	}
	cfg.Schedule = ScheduleConfig{
		UnknownWeekdayPolicy: policy,
		DefaultWeekday:       v.GetInt("SCHEDULE_DEFAULT_WEEKDAY"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.PaymentLink = PaymentLinkConfig{
		BaseURL: v.GetString("PAYMENT_LINK_BASE_URL"),
		Timeout: parseDuration(v.GetString("PAYMENT_LINK_TIMEOUT"), 10*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "salsa_studio")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BILLING_PRICE_PER_CLASS", 15.0)
	v.SetDefault("BILLING_LATE_DAY_THRESHOLD", 5)
	v.SetDefault("BILLING_MIN_ACCEPTABLE_AMOUNT", 30.0)

	v.SetDefault("SCHEDULE_UNKNOWN_WEEKDAY_POLICY", UnknownWeekdayEmpty)
	v.SetDefault("SCHEDULE_DEFAULT_WEEKDAY", 0)

	v.SetDefault("ENABLE_DASHBOARD", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("PAYMENT_LINK_BASE_URL", "https://stripe-backend-apprendiendo.onrender.com")
	v.SetDefault("PAYMENT_LINK_TIMEOUT", "10s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
