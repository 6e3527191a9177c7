package config

import "time"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Storage     StorageConfig     `yaml:"storage"`
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Redis       RedisConfig       `yaml:"redis"`
	Progression ProgressionConfig `yaml:"progression"`
	Hub         HubConfig         `yaml:"hub"`
}

type ServerConfig struct {
	Port          int           `yaml:"port" env:"PORT"`
	Environment   string        `yaml:"environment" env:"NODE_ENV"`
	AllowedOrigin string        `yaml:"allowed_origin" env:"CORS_ORIGIN"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	// Лимит на создание заказов (запросов в секунду)
	CreateRate  float64 `yaml:"create_rate" env:"ORDER_CREATE_RATE"`
	CreateBurst int     `yaml:"create_burst" env:"ORDER_CREATE_BURST"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
	// Заполнить пустое меню при старте API; для memory всегда
	SeedOnStart bool `yaml:"seed_on_start" env:"SEED_ON_START"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Database string `yaml:"database" env:"DB_NAME"`
}

type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled" env:"RABBITMQ_ENABLED"`
	Host     string `yaml:"host" env:"RABBITMQ_HOST"`
	Port     int    `yaml:"port" env:"RABBITMQ_PORT"`
	User     string `yaml:"user" env:"RABBITMQ_USER"`
	Password string `yaml:"password" env:"RABBITMQ_PASSWORD"`
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr    string        `yaml:"addr" env:"REDIS_ADDR"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

// ProgressionConfig holds the delay spent in each non-terminal status.
type ProgressionConfig struct {
	ReceivedDelay       time.Duration `yaml:"received_delay" env:"PROGRESSION_RECEIVED_DELAY"`
	PreparingDelay      time.Duration `yaml:"preparing_delay" env:"PROGRESSION_PREPARING_DELAY"`
	OutForDeliveryDelay time.Duration `yaml:"out_for_delivery_delay" env:"PROGRESSION_OUT_FOR_DELIVERY_DELAY"`
	StepTimeout         time.Duration `yaml:"step_timeout"`
	StepRetries         int           `yaml:"step_retries" env:"PROGRESSION_STEP_RETRIES"`
	RetryBaseDelay      time.Duration `yaml:"retry_base_delay"`
	RetryMaxDelay       time.Duration `yaml:"retry_max_delay"`
}

type HubConfig struct {
	BufferSize int `yaml:"buffer_size" env:"HUB_BUFFER_SIZE"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          5000,
			Environment:   "development",
			AllowedOrigin: "http://localhost:5173",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			IdleTimeout:   60 * time.Second,
			CreateRate:    10,
			CreateBurst:   20,
		},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{Driver: StoragePostgres},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "food_delivery",
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  5 * time.Minute,
		},
		Progression: ProgressionConfig{
			ReceivedDelay:       5 * time.Second,
			PreparingDelay:      10 * time.Second,
			OutForDeliveryDelay: 15 * time.Second,
			StepTimeout:         5 * time.Second,
			RetryBaseDelay:      500 * time.Millisecond,
			RetryMaxDelay:       4 * time.Second,
		},
		Hub: HubConfig{BufferSize: 16},
	}
}
