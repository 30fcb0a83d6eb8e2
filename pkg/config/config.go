package config

import (
	"log"
	"os"
	"time"

	"github.com/Vishal-21-lang/supplychain-inventory-orchestrator/pkg/utils"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env       string    `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTP      `yaml:"http"`
	Postgres  PG        `yaml:"postgres"`
	Redis     Redis     `yaml:"redis"`
	Kafka     Kafka     `yaml:"kafka"`
	Services  Services  `yaml:"services"`
	Inventory Inventory `yaml:"inventory"`
	Logger    Logger    `yaml:"logger"`
}

type HTTP struct {
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:":3000"`
	Timeout time.Duration `yaml:"timeout" env-default:"4s"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
}

type Services struct {
	InventoryURL string `yaml:"inventory_url" env:"INVENTORY_SERVICE_URL" env-default:"http://localhost:3001"`
}

// Inventory holds the process-wide reservation settings. Strategy is read
// once at startup and applied uniformly to every product.
type Inventory struct {
	Strategy string `yaml:"strategy" env:"INVENTORY_STRATEGY" env-default:"fifo"`
}

type Logger struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

func MustLoad(defaultPath string) *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", defaultPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exists: %v\n", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return &cfg
}
