package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Location   LocationConfig
	Proximity  ProximityConfig
	Redis      RedisConfig
	Firebase   FirebaseConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Requests per RateWindow per client IP.
	RateLimit  int
	RateWindow time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type LocationConfig struct {
	// Random offset applied to coordinates pushed to other clients.
	LocationFuzzMeters float64
	// Minimum spacing between two location writes from one user.
	MinUpdateInterval time.Duration
}

// Pool backends for the nearby candidate pool.
const (
	PoolBackendSQL       = "sql"
	PoolBackendRedis     = "redis"
	PoolBackendFirestore = "firestore"
)

type ProximityConfig struct {
	DefaultRadiusMeters float64
	MaxRadiusMeters     float64
	DefaultMaxAge       time.Duration
	DefaultLimit        int
	MaxLimit            int
	SmoothingFactor     float64
	RescanInterval      time.Duration
	HeadingDisplayHz    float64
	PoolBackend         string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	LocationTTL time.Duration
}

type FirebaseConfig struct {
	ServiceAccountPath string
	ProjectID          string
	UsersCollection    string
}

func (c *Config) IsProduction() bool { return c.Server.Env == "production" }

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         Env("PORT", "8099"),
			Env:          Env("APP_ENV", "development"),
			ReadTimeout:  EnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: EnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			RateLimit:    EnvInt("RATE_LIMIT", 120),
			RateWindow:   EnvDuration("RATE_WINDOW", 60*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             Env("DATABASE_DSN", "chappat:chappat@tcp(localhost:3306)/chappat?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    EnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    EnvInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: EnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: Env("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: EnvDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       Env("JWT_ISSUER", "chappat"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: Env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    Env("CLOUDINARY_API_KEY", ""),
			APISecret: Env("CLOUDINARY_API_SECRET", ""),
		},
		Location: LocationConfig{
			LocationFuzzMeters: EnvFloat("LOCATION_FUZZ_METERS", 0),
			MinUpdateInterval:  EnvDuration("LOCATION_MIN_UPDATE_INTERVAL", time.Second),
		},
		Proximity: ProximityConfig{
			DefaultRadiusMeters: EnvFloat("PROXIMITY_DEFAULT_RADIUS_METERS", 5000),
			MaxRadiusMeters:     EnvFloat("PROXIMITY_MAX_RADIUS_METERS", 50000),
			DefaultMaxAge:       EnvDuration("PROXIMITY_DEFAULT_MAX_AGE", 5*time.Minute),
			DefaultLimit:        EnvInt("PROXIMITY_DEFAULT_LIMIT", 50),
			MaxLimit:            EnvInt("PROXIMITY_MAX_LIMIT", 200),
			SmoothingFactor:     EnvFloat("HEADING_SMOOTHING_FACTOR", 0.1),
			RescanInterval:      EnvDuration("RADAR_RESCAN_INTERVAL", 10*time.Second),
			HeadingDisplayHz:    EnvFloat("HEADING_DISPLAY_HZ", 5),
			PoolBackend:         Env("POOL_BACKEND", PoolBackendSQL),
		},
		Redis: RedisConfig{
			Addr:        Env("REDIS_ADDR", ""),
			Password:    Env("REDIS_PASSWORD", ""),
			DB:          EnvInt("REDIS_DB", 0),
			LocationTTL: EnvDuration("REDIS_LOCATION_TTL", time.Hour),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: Env("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
			ProjectID:          Env("FIREBASE_PROJECT_ID", ""),
			UsersCollection:    Env("FIRESTORE_USERS_COLLECTION", "users"),
		},
	}
}

// Env returns the environment variable or def when unset/empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func EnvFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

// EnvDuration accepts Go durations ("90s", "5m").
func EnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
