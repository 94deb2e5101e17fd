package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/sushilghimire07/Social-Media-App/pkg/config"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Media    MediaConfig
	Worker   WorkerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Brokers       string
	Topic         string
	ConsumerGroup string `mapstructure:"consumer_group"`
}

type StorageConfig struct {
	Backend string // "local" or "s3"
	Local   LocalStorageConfig
	S3      S3Config
}

type LocalStorageConfig struct {
	BasePath string `mapstructure:"base_path"`
	BaseURL  string `mapstructure:"base_url"`
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Endpoint        string
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

type AuthConfig struct {
	Issuer       string
	PublicKeyPEM string        `mapstructure:"public_key_pem"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppURL   string `mapstructure:"app_url"`
}

type MediaConfig struct {
	MaxImageWidth int `mapstructure:"max_image_width"`
	JPEGQuality   int `mapstructure:"jpeg_quality"`
}

type WorkerConfig struct {
	DigestSchedule string        `mapstructure:"digest_schedule"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	ReminderDelay  time.Duration `mapstructure:"reminder_delay"`
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "social")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/social.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.prefix", "social")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "social-events")
	v.SetDefault("kafka.consumer_group", "social-worker")
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.base_path", "./data/uploads")
	v.SetDefault("storage.local.base_url", "http://localhost:8080/uploads")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "social-media")
	v.SetDefault("storage.s3.use_path_style", false)
	v.SetDefault("auth.issuer", "social-media-app")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@localhost")
	v.SetDefault("smtp.app_url", "http://localhost:3000")
	v.SetDefault("media.max_image_width", 1280)
	v.SetDefault("media.jpeg_quality", 85)
	v.SetDefault("worker.digest_schedule", "0 9 * * *")
	v.SetDefault("worker.sweep_interval", "10m")
	v.SetDefault("worker.reminder_delay", "24h")
	v.SetDefault("log.level", "info")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("kafka.consumer_group", "KAFKA_CONSUMER_GROUP")
	v.BindEnv("storage.backend", "STORAGE_BACKEND")
	v.BindEnv("storage.local.base_path", "STORAGE_LOCAL_PATH")
	v.BindEnv("storage.local.base_url", "STORAGE_LOCAL_URL")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.public_base_url", "S3_PUBLIC_BASE_URL")
	v.BindEnv("auth.issuer", "AUTH_ISSUER")
	v.BindEnv("auth.public_key_pem", "AUTH_PUBLIC_KEY_PEM")
	v.BindEnv("smtp.host", "SMTP_HOST")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.username", "SMTP_USERNAME")
	v.BindEnv("smtp.password", "SMTP_PASSWORD")
	v.BindEnv("smtp.from", "SMTP_FROM")
	v.BindEnv("smtp.app_url", "APP_URL")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.Cache.TTL = parseDuration(v, "cache.ttl", 30*time.Second)
	cfg.Auth.TokenTTL = parseDuration(v, "auth.token_ttl", 24*time.Hour)
	cfg.Worker.SweepInterval = parseDuration(v, "worker.sweep_interval", 10*time.Minute)
	cfg.Worker.ReminderDelay = parseDuration(v, "worker.reminder_delay", 24*time.Hour)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
