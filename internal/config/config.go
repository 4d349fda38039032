package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Database    DatabaseConfig
	Embedding   EmbeddingConfig
	Match       MatchConfig
	S3          S3Config
	Reservation ReservationConfig
	Gallery     GalleryConfig
	Events      EventsConfig
	Web         WebConfig
	Log         LogConfig
	Models      ModelsConfig
}

type DatabaseConfig struct {
	URL          string // MySQL DSN (user:pass@tcp(host:3306)/kiosk) or postgres:// URL
	MaxOpenConns int    `default:"10"`
	MaxIdleConns int    `default:"5"`
}

type EmbeddingConfig struct {
	URL     string        `default:"http://localhost:8000"`
	Model   string        `default:"ArcFace"`
	Timeout time.Duration `default:"30s"`
}

type MatchConfig struct {
	Threshold float64 // 0 means "use the model profile"
}

type S3Config struct {
	Bucket          string
	Region          string        `default:"us-east-1"`
	Endpoint        string        // custom endpoint for S3-compatible stores (MinIO)
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration `default:"1h"`
}

type ReservationConfig struct {
	Tolerance time.Duration `default:"5m"`
	Timezone  string        `default:"Local"`
}

type GalleryConfig struct {
	ReloadInterval time.Duration `default:"1m"`
}

type EventsConfig struct {
	RabbitMQURL string // empty disables event publishing
	Queue       string `default:"lab.access.granted"`
}

type WebConfig struct {
	Host           string        `default:"0.0.0.0"`
	Port           int           `default:"5000"`
	AllowedOrigins string        // comma-separated, localhost is always allowed
	RequestTimeout time.Duration `default:"60s"`
}

type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"text"`
}

type ModelsConfig struct {
	Models map[string]ModelProfile `yaml:"models"`
}

type ModelProfile struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a positive float, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envDuration reads a non-negative duration such as "90s" or "5m".
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

// envString returns the env var or defaultVal when unset or empty.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// Tags are static, so this only fires on a programming error
		panic("failed to apply config defaults: " + err.Error())
	}
	if err := yaml.Unmarshal(modelsYAML, &cfg.Models); err != nil {
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.Embedding.URL = envString("EMBEDDING_URL", cfg.Embedding.URL)
	cfg.Embedding.Model = envString("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.Timeout = envDuration("EMBEDDING_TIMEOUT", cfg.Embedding.Timeout)

	cfg.Match.Threshold = envFloat("MATCH_THRESHOLD", 0)

	cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	cfg.S3.Region = envString("S3_REGION", cfg.S3.Region)
	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.S3.PresignTTL = envDuration("S3_PRESIGN_TTL", cfg.S3.PresignTTL)

	cfg.Reservation.Tolerance = envDuration("RESERVATION_TOLERANCE", cfg.Reservation.Tolerance)
	cfg.Reservation.Timezone = envString("KIOSK_TIMEZONE", cfg.Reservation.Timezone)

	cfg.Gallery.ReloadInterval = envDuration("GALLERY_RELOAD_INTERVAL", cfg.Gallery.ReloadInterval)

	cfg.Events.RabbitMQURL = envString("RABBITMQ_URL", os.Getenv("AMQP_URL"))
	cfg.Events.Queue = envString("EVENTS_QUEUE", cfg.Events.Queue)

	cfg.Web.Host = envString("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = envInt("WEB_PORT", cfg.Web.Port)
	cfg.Web.AllowedOrigins = os.Getenv("WEB_ALLOWED_ORIGINS")
	cfg.Web.RequestTimeout = envDuration("WEB_REQUEST_TIMEOUT", cfg.Web.RequestTimeout)

	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envString("LOG_FORMAT", cfg.Log.Format)

	return cfg
}

// MatchThreshold returns the configured match threshold, falling back to the
// embedding model profile and finally to fallback.
func (c *Config) MatchThreshold(fallback float64) float64 {
	if c.Match.Threshold > 0 {
		return c.Match.Threshold
	}
	if profile, ok := c.Models.Models[c.Embedding.Model]; ok && profile.Threshold > 0 {
		return profile.Threshold
	}
	return fallback
}

// Location resolves the kiosk timezone. Unknown names fall back to time.Local.
func (c *ReservationConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
