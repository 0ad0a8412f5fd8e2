package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string
	SiteID   string

	DBDriver string
	DBDSN    string

	AuthHMACSecret  string
	EnableLocalAuth bool

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	LogLevel string
	LogFile  string // empty: console only

	SaveTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	TracingEnabled  bool
	TracingEndpoint string // jaeger collector
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		SiteID:             envOr("SITE_ID", "local"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		AuthHMACSecret:     envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		EnableLocalAuth:    envBool("ENABLE_LOCAL_AUTH", true),
		AdminUser:          envOr("ADMIN_USER", "admin"),
		AdminPassHash:      envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://lms.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:3010"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
		LogFile:            os.Getenv("LOG_FILE"),
		SaveTimeout:        envDuration("SAVE_TIMEOUT", 15*time.Second),
		RateLimitRPS:       envFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 10),
		TracingEnabled:     envBool("TRACING_ENABLED", false),
		TracingEndpoint:    envOr("TRACING_COLLECTOR_ENDPOINT", "http://localhost:14268/api/traces"),
	}
}

// Load reads FromEnv and then fills every setting whose environment variable
// is unset from file (yaml, toml or json, keyed by the lower-cased variable
// name, e.g. http_addr). An empty file is the same as FromEnv.
func Load(file string) (Config, error) {
	cfg := FromEnv()
	if file == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", file, err)
	}
	fromFile := func(key string) bool {
		return os.Getenv(strings.ToUpper(key)) == "" && v.IsSet(key)
	}
	str := func(key string, dst *string) {
		if fromFile(key) {
			*dst = v.GetString(key)
		}
	}
	list := func(key string, dst *[]string) {
		if !fromFile(key) {
			return
		}
		if raw, ok := v.Get(key).(string); ok {
			*dst = splitCSV(raw)
			return
		}
		*dst = v.GetStringSlice(key)
	}

	if fromFile("mode") {
		cfg.Mode = Mode(v.GetString("mode"))
	}
	str("http_addr", &cfg.HTTPAddr)
	str("site_id", &cfg.SiteID)
	str("db_driver", &cfg.DBDriver)
	str("db_dsn", &cfg.DBDSN)
	str("auth_hmac_secret", &cfg.AuthHMACSecret)
	str("admin_user", &cfg.AdminUser)
	str("admin_pass_hash", &cfg.AdminPassHash)
	str("log_level", &cfg.LogLevel)
	str("log_file", &cfg.LogFile)
	list("cors_origins_online", &cfg.CORSOriginsOnline)
	list("cors_origins_offline", &cfg.CORSOriginsOffline)
	str("tracing_collector_endpoint", &cfg.TracingEndpoint)
	if fromFile("enable_local_auth") {
		cfg.EnableLocalAuth = v.GetBool("enable_local_auth")
	}
	if fromFile("tracing_enabled") {
		cfg.TracingEnabled = v.GetBool("tracing_enabled")
	}
	if fromFile("save_timeout") {
		if d := v.GetDuration("save_timeout"); d > 0 {
			cfg.SaveTimeout = d
		}
	}
	if fromFile("rate_limit_rps") {
		if f := v.GetFloat64("rate_limit_rps"); f > 0 {
			cfg.RateLimitRPS = f
		}
	}
	if fromFile("rate_limit_burst") {
		if n := v.GetInt("rate_limit_burst"); n > 0 {
			cfg.RateLimitBurst = n
		}
	}
	return cfg, nil
}

// CORSOrigins returns the allowed origins for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
func envFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	return f
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	return splitCSV(envOr(k, def))
}
func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
