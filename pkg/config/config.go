package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Leave     LeaveConfig
	Analytics AnalyticsConfig
	Export    ExportConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig configures dashboard session tokens.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AuthConfig lists admin identities, the DingTalk corp id and development login toggles.
type AuthConfig struct {
	AdminMobiles    []string
	CorpID          string
	DevLoginEnabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// LeaveConfig holds the organisation-level leave settings synced from DingTalk.
type LeaveConfig struct {
	RootDeptID     int64
	VisibleTypes   []string
	Holidays       []time.Time
	ExtraWorkdays  []time.Time
	Location       *time.Location
	CacheTTL       time.Duration
	DefaultTimeout time.Duration
}

// AnalyticsConfig governs cache behaviour for chart endpoints.
type AnalyticsConfig struct {
	Enabled      bool
	CacheTTL     time.Duration
	RankingLimit int
}

// ExportConfig configures summary exports.
type ExportConfig struct {
	Enabled  bool
	MaxRows  int
	PDFTitle string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret: v.GetString("SESSION_SECRET"),
		TTL:    parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		Issuer: v.GetString("SESSION_ISSUER"),
	}

	cfg.Auth = AuthConfig{
		AdminMobiles:    splitAndTrim(v.GetString("ADMIN_MOBILES")),
		CorpID:          v.GetString("DINGTALK_CORP_ID"),
		DevLoginEnabled: v.GetBool("AUTH_DEV_LOGIN"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Leave = LeaveConfig{
		RootDeptID:     v.GetInt64("ROOT_DEPT_ID"),
		VisibleTypes:   splitAndTrim(v.GetString("LEAVE_TYPE_NAMES")),
		Holidays:       parseDates(v.GetString("HOLIDAYS")),
		ExtraWorkdays:  parseDates(v.GetString("EXTRA_WORKDAYS")),
		Location:       parseLocation(v.GetString("LEAVE_TIMEZONE")),
		CacheTTL:       parseDuration(v.GetString("LEAVE_CACHE_TTL"), 5*time.Minute),
		DefaultTimeout: parseDuration(v.GetString("LEAVE_QUERY_TIMEOUT"), 10*time.Second),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:      v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL:     parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		RankingLimit: v.GetInt("ANALYTICS_RANKING_LIMIT"),
	}

	cfg.Export = ExportConfig{
		Enabled:  v.GetBool("ENABLE_EXPORT"),
		MaxRows:  v.GetInt("EXPORT_MAX_ROWS"),
		PDFTitle: v.GetString("EXPORT_PDF_TITLE"),
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
	v.SetDefault("DB_NAME", "leave_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_ISSUER", "leave-dashboard")

	v.SetDefault("ADMIN_MOBILES", "")
	v.SetDefault("DINGTALK_CORP_ID", "")
	v.SetDefault("AUTH_DEV_LOGIN", false)

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROOT_DEPT_ID", 1)
	v.SetDefault("LEAVE_TYPE_NAMES", "")
	v.SetDefault("HOLIDAYS", "")
	v.SetDefault("EXTRA_WORKDAYS", "")
	v.SetDefault("LEAVE_TIMEZONE", "Asia/Shanghai")
	v.SetDefault("LEAVE_CACHE_TTL", "5m")
	v.SetDefault("LEAVE_QUERY_TIMEOUT", "10s")

	v.SetDefault("ENABLE_ANALYTICS", true)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("ANALYTICS_RANKING_LIMIT", 10)

	v.SetDefault("ENABLE_EXPORT", true)
	v.SetDefault("EXPORT_MAX_ROWS", 5000)
	v.SetDefault("EXPORT_PDF_TITLE", "Leave summary")
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

// parseLocation falls back to UTC+8 when the zone database lacks the name.
func parseLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, 8*60*60)
	}
	return loc
}

// parseDates reads a comma separated list of YYYY-MM-DD values, skipping malformed entries.
func parseDates(raw string) []time.Time {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil
	}
	dates := make([]time.Time, 0, len(parts))
	for _, part := range parts {
		d, err := time.Parse("2006-01-02", part)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates
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
