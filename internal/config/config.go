package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Algorithm  string        `mapstructure:"algorithm"`
	Expiration time.Duration `mapstructure:"expiration"`
	Issuer     string        `mapstructure:"issuer"`
}

// AuthConfig controls how callers are identified.
// AllowUserIDParam lets requests identify themselves with ?user_id=... instead
// of a bearer token. Development only.
type AuthConfig struct {
	AllowUserIDParam bool `mapstructure:"allow_user_id_param"`
}

type StripeConfig struct {
	SecretKey       string `mapstructure:"secret_key"`
	WebhookSecret   string `mapstructure:"webhook_secret"`
	DefaultCurrency string `mapstructure:"default_currency"`
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type RateLimitConfig struct {
	GenerateRPS   float64 `mapstructure:"generate_rps"`
	GenerateBurst int     `mapstructure:"generate_burst"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var supportedJWTAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory, if present, is loaded into the
// environment first.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil // env vars and defaults are enough
	} else if err != nil {
		return config, fmt.Errorf("reading config file: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshalling config: %w", err)
	}
	config.JWT.Algorithm = strings.ToUpper(config.JWT.Algorithm)

	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitcoach")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "fitcoach-profiles")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.expiration", "1h")
	v.SetDefault("jwt.issuer", "fitcoach")
	v.SetDefault("auth.allow_user_id_param", false)
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.default_currency", "usd")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", "30s")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "fitcoach.events")
	v.SetDefault("ratelimit.generate_rps", 0.2)
	v.SetDefault("ratelimit.generate_burst", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if !supportedJWTAlgorithms[c.JWT.Algorithm] {
		return fmt.Errorf("unsupported jwt.algorithm %q", c.JWT.Algorithm)
	}
	if c.Database.URI == "" || c.Database.Name == "" {
		return errors.New("database.uri and database.name must be set")
	}
	return nil
}
