package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

func init() {
	ServiceConfig = Load()
}

var ServiceConfig *Config

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Jobs     JobsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Host           string
	BodyLimit      int
}

type ConsulConfig struct {
	ConsulAddress string
	Enabled       bool
}

type MongoDBConfig struct {
	URI             string
	Database        string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	Timeout         time.Duration
}

// JobsConfig schedules the history link reconciler. An empty schedule disables it.
type JobsConfig struct {
	ReconcileSchedule string
	ReconcileMinAge   time.Duration
	ReconcileBatch    int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	MediaBucket     string
	MaxImageSize    int64
	MaxAudioSize    int64
	PresignExpiry   time.Duration
}

// JWTConfig carries the token signing material. There is no built-in secret.
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

type AuthConfig struct {
	MaxFailedLogins   int
	LockoutDuration   time.Duration
	ResetTokenTTL     time.Duration
	MinPasswordLength int
}

type LogConfig struct {
	Dir string
}

func Load() *Config {
	serviceName := getEnv("EXAM_SERVICE_NAME", "exam-service")
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "9300"),
			ServiceName:    serviceName,
			ServiceAddress: getEnv("EXAM_SERVICE_ADDRESS", "exam-service"),
			ServiceID:      serviceName + "-" + getEnv("HOSTNAME", "exam"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			Host:           getEnv("HOST", "0.0.0.0"),
			BodyLimit:      getEnvAsInt("BODY_LIMIT", 20*1024*1024),
		},
		Consul: ConsulConfig{
			ConsulAddress: getEnv("CONSUL_ADDRESS", "consul-server:"+getEnv("CONSUL_PORT", "8500")),
			Enabled:       getEnvAsBool("CONSUL_ENABLED", false),
		},
		MongoDB: MongoDBConfig{
			URI:             getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:        getEnv("MONGODB_DATABASE", "exam_portal"),
			MaxPoolSize:     getEnvAsUint64("MONGODB_POOL_SIZE", 100),
			MinPoolSize:     getEnvAsUint64("MONGODB_MIN_POOL_SIZE", 10),
			MaxConnIdleTime: getEnvAsDuration("MONGODB_MAX_IDLE", 60*time.Second),
			Timeout:         getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "exam.events"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:          getEnvAsBool("MINIO_USE_SSL", false),
			Region:          getEnv("MINIO_REGION", "us-east-1"),
			MediaBucket:     getEnv("MINIO_MEDIA_BUCKET", "exam-media"),
			MaxImageSize:    int64(getEnvAsInt("MAX_IMAGE_SIZE", 5*1024*1024)),
			MaxAudioSize:    int64(getEnvAsInt("MAX_AUDIO_SIZE", 15*1024*1024)),
			PresignExpiry:   getEnvAsDuration("MINIO_PRESIGN_EXPIRY", time.Hour),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", serviceName),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Auth: AuthConfig{
			MaxFailedLogins:   getEnvAsInt("AUTH_MAX_FAILED_LOGINS", 5),
			LockoutDuration:   getEnvAsDuration("AUTH_LOCKOUT_DURATION", 10*time.Minute),
			ResetTokenTTL:     getEnvAsDuration("AUTH_RESET_TOKEN_TTL", time.Hour),
			MinPasswordLength: getEnvAsInt("AUTH_MIN_PASSWORD_LENGTH", 6),
		},
		Jobs: JobsConfig{
			ReconcileSchedule: getEnv("HISTORY_RECONCILE_SCHEDULE", "*/5 * * * *"),
			ReconcileMinAge:   getEnvAsDuration("HISTORY_RECONCILE_MIN_AGE", time.Minute),
			ReconcileBatch:    getEnvAsInt("HISTORY_RECONCILE_BATCH", 100),
		},
		Log: LogConfig{
			Dir: getEnv("LOG_DIR", "/exam-portal/log/exam_service"),
		},
	}
}

// Validate reports configuration that the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWT.Expiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
		return errors.New("MONGODB_URI and MONGODB_DATABASE must be set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("error retrieve int env var %s: %s", key, err)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		uintVal, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			log.Printf("error retrieve uint64 env var %s: %s", key, err)
			return defaultValue
		}
		return uintVal
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("error retrieve bool env var %s: %s", key, err)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		duration, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("error retrieve duration env var %s: %s", key, err)
			return defaultValue
		}
		return duration
	}
	return defaultValue
}
