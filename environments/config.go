package environments

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Link     LinkConfig
	Dispatch DispatchConfig
	Worker   WorkerConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GatewayConfig points at the WhatsApp HTTP gateway that holds the two
// paired sender sessions.
type GatewayConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	GroomSession string
	BrideSession string
}

// LinkConfig points at the invitation backend that mints personalized
// invitation links.
type LinkConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type DispatchConfig struct {
	SettleDelay       time.Duration
	BulkLinkThreshold int
}

type WorkerConfig struct {
	BatchSize    int
	Interval     time.Duration
	SendPause    time.Duration
	MaxBodyBytes int
}

type AuthConfig struct {
	DispatchAPIKey string
	WorkerAPIKey   string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: GetEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "wedding"),
			Password: GetEnv("DB_PASSWORD", "wedding123"),
			DBName:   GetEnv("DB_NAME", "wedding_dispatch"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		Gateway: GatewayConfig{
			BaseURL:      GetEnv("GATEWAY_URL", "http://localhost:3000"),
			APIKey:       GetEnv("GATEWAY_API_KEY", ""),
			Timeout:      time.Duration(GetEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second,
			GroomSession: GetEnv("GATEWAY_GROOM_SESSION", "groom"),
			BrideSession: GetEnv("GATEWAY_BRIDE_SESSION", "bride"),
		},
		Link: LinkConfig{
			BaseURL:  GetEnv("INVITATION_API_URL", "http://localhost:8081"),
			Timeout:  time.Duration(GetEnvAsInt("INVITATION_API_TIMEOUT_SECONDS", 10)) * time.Second,
			CacheTTL: GetEnvAsDuration("INVITATION_LINK_CACHE_TTL", 24*time.Hour),
		},
		Dispatch: DispatchConfig{
			SettleDelay:       GetEnvAsDuration("DISPATCH_SETTLE_DELAY", 400*time.Millisecond),
			BulkLinkThreshold: GetEnvAsInt("DISPATCH_BULK_LINK_THRESHOLD", 5),
		},
		Worker: WorkerConfig{
			BatchSize:    GetEnvAsInt("WORKER_BATCH_SIZE", 10),
			Interval:     GetEnvAsDuration("WORKER_INTERVAL", time.Minute),
			SendPause:    GetEnvAsDuration("WORKER_SEND_PAUSE", 3*time.Second),
			MaxBodyBytes: GetEnvAsInt("WORKER_MAX_BODY_BYTES", 4096),
		},
		Auth: AuthConfig{
			DispatchAPIKey: GetEnv("DISPATCH_API_KEY", ""),
			WorkerAPIKey:   GetEnv("WORKER_API_KEY", ""),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
