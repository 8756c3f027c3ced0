package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string   `mapstructure:"APP_PORT"`
	DatabaseURL       string   `mapstructure:"DATABASE_URL"`
	DatabaseName      string   `mapstructure:"DATABASE_NAME"`
	Env               string   `mapstructure:"ENV"`
	JWTSecret         string   `mapstructure:"JWT_SECRET"`
	LogLevel          string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB          int    `mapstructure:"REDIS_AUTH_DB"`
	RedisBookingDB       int    `mapstructure:"REDIS_BOOKING_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Booking flow.
	BookingSessionTTL time.Duration `mapstructure:"BOOKING_SESSION_TTL"`
	SubmitTimeout     time.Duration `mapstructure:"SUBMIT_TIMEOUT"`
	ReminderLead      time.Duration `mapstructure:"REMINDER_LEAD"`
	ReceiptTTL        time.Duration `mapstructure:"RECEIPT_TTL"`
	Currency          string        `mapstructure:"CURRENCY"`
	CatalogSeedFile   string        `mapstructure:"CATALOG_SEED_FILE"`

	// Integrations. Empty credentials disable the integration.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	CloudinaryCloudName     string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey        string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret     string `mapstructure:"CLOUDINARY_API_SECRET"`
	AttachmentKey           string `mapstructure:"ATTACHMENT_ENCRYPTION_KEY"`
	StripeKey               string `mapstructure:"STRIPE_KEY"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("CORS_ORIGINS", []string{"*"})
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_AUTH_DB", 1)
	v.SetDefault("REDIS_BOOKING_DB", 3)
	v.SetDefault("REDIS_REMINDER_QUEUE_DB", 4)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "toltimed")
	v.SetDefault("BOOKING_SESSION_TTL", "30m")
	v.SetDefault("SUBMIT_TIMEOUT", "30s")
	v.SetDefault("REMINDER_LEAD", "2h")
	v.SetDefault("RECEIPT_TTL", "24h")
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("CATALOG_SEED_FILE", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("ATTACHMENT_ENCRYPTION_KEY", "")
	v.SetDefault("STRIPE_KEY", "")
}

// Load reads configuration from v: a config.yaml in . or ./config, then the environment.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	return cfg, nil
}

func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
