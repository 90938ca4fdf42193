// Package config предоставляет структуры и функции для загрузки конфига сервиса.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string                    `yaml:"env" env-default:"local"`
	GRPCHealthAddress       string                    `yaml:"grpc_health_address" env:"GRPC_HEALTH_ADDRESS" env-default:":9090"`
	RelayMetricsAddress     string                    `yaml:"relay_metrics_address" env:"RELAY_METRICS_ADDRESS" env-default:":9100"`
	StorageConnectionString string                    `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string                    `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         RedisConnection           `yaml:"redis_connection"`
	HTTPServer              HTTPServer                `yaml:"http_server"`
	JWTToken                JWTToken                  `yaml:"jwttoken"`
	Functions               Functions                 `yaml:"functions"`
	RabbitMQ                RabbitMQ                  `yaml:"rabbitmq"`
	Entitlement             Entitlement               `yaml:"entitlement"`
	Plans                   []models.SubscriptionPlan `yaml:"plans"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Timeout     time.Duration `yaml:"timeout"`
}

// JWTToken структура для проверки токенов личности
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// Functions настройки клиента серверных функций
type Functions struct {
	BaseURL    string        `yaml:"base_url" env:"FUNCTIONS_BASE_URL"`
	ServiceKey string        `yaml:"service_key" env:"FUNCTIONS_SERVICE_KEY"`
	Timeout    time.Duration `yaml:"timeout" env-default:"10s"`
}

// RabbitMQ настройки очереди чеков
type RabbitMQ struct {
	URL          string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries   int           `yaml:"max_retries" env-default:"5"`
	RetryDelay   time.Duration `yaml:"retry_delay" env-default:"2s"`
	ReceiptQueue string        `yaml:"receipt_queue" env-default:"receipts.email"`
}

// Entitlement настройки сверки прав доступа
type Entitlement struct {
	ValidateTimeout time.Duration `yaml:"validate_timeout" env-default:"10s"`
	RecordCacheTTL  time.Duration `yaml:"record_cache_ttl" env-default:"1h"`
	MutationRPS     float64       `yaml:"mutation_rps" env-default:"1"`
	MutationBurst   int           `yaml:"mutation_burst" env-default:"3"`
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"GRPCHealthAddress: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"Functions:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"Entitlement:\n"+
			"  ValidateTimeout: %s\n"+
			"  RecordCacheTTL: %s\n"+
			"Plans: %d\n",
		c.Env,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		c.GRPCHealthAddress,
		c.RedisConnection.Address,
		c.RedisConnection.DB,
		c.Functions.BaseURL,
		c.Functions.Timeout,
		c.Entitlement.ValidateTimeout,
		c.Entitlement.RecordCacheTTL,
		len(c.Plans),
	)
}
