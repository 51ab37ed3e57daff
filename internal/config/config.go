package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
}

type Database struct {
	Host            string        `yaml:"host" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"port" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"password" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"name" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"sslmode" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"PG_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"username" env:"REDIS_USER" env-default:""`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type RateConfig struct {
	MaxAttempts int64         `yaml:"max_attempts" env:"MAX_ATTEMPTS" env-default:"5"`
	WindowSize  time.Duration `yaml:"window_size" env:"WINDOW_SIZE" env-default:"15m"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"10m"`
}

type Security struct {
	JWTKey      string        `yaml:"jwt_key" env:"JWT_KEY" env-required:"true"`
	TokenExpiry time.Duration `yaml:"token_expiry" env:"TOKEN_EXPIRY" env-default:"24h"`
}

type Stripe struct {
	APIKey              string   `yaml:"api_key" env:"STRIPE_API_KEY" env-default:""`
	WebhookSecret       string   `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET" env-default:""`
	SupportedCurrencies []string `yaml:"supported_currencies" env:"STRIPE_SUPPORTED_CURRENCIES" env-default:"usd,eur,inr"`
}

type SendGrid struct {
	APIKey    string `yaml:"api_key" env:"SENDGRID_API_KEY" env-default:""`
	FromEmail string `yaml:"from_email" env:"SENDGRID_FROM_EMAIL" env-default:"orders@shopora.dev"`
	FromName  string `yaml:"from_name" env:"SENDGRID_FROM_NAME" env-default:"Shopora"`
}

type Cloudinary struct {
	CloudName string `yaml:"cloud_name" env:"CLOUDINARY_CLOUD_NAME" env-default:""`
	APIKey    string `yaml:"api_key" env:"CLOUDINARY_API_KEY" env-default:""`
	APISecret string `yaml:"api_secret" env:"CLOUDINARY_API_SECRET" env-default:""`
	Folder    string `yaml:"folder" env:"CLOUDINARY_FOLDER" env-default:"shopora"`
}

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	Database   Database    `yaml:"database"`
	Redis      Redis       `yaml:"redis"`
	RateConfig RateConfig  `yaml:"rate_limit"`
	Cache      CacheConfig `yaml:"cache"`
	Security   Security    `yaml:"security"`
	Stripe     Stripe      `yaml:"stripe"`
	SendGrid   SendGrid    `yaml:"sendgrid"`
	Cloudinary Cloudinary  `yaml:"cloudinary"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			log.Fatal("Config path is not set")
		}

	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return &cfg
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *Redis) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s/%d",
		r.Username, r.Password, r.Host, r.Port, r.DB)
}
