// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"DB_PATH" env-default:"db.json"`
	// AdminToken задаёт токен администратора при первой инициализации
	// хранилища; после создания файла состояния значение не перечитывается.
	AdminToken string `yaml:"admin_token" env:"ADMIN_TOKEN"`
	HTTPServer `yaml:"http_server"`
	Presence   `yaml:"presence"`
	RateLimit  `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Presence структура для настройки счётчика онлайна
type Presence struct {
	WindowSeconds int `yaml:"window_seconds" env-default:"300"`
}

// RateLimit структура для настройки ограничения частоты запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"50"`
	Burst int     `yaml:"burst" env-default:"100"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	token := "(default)"
	if c.AdminToken != "" {
		token = "(set)"
	}
	return fmt.Sprintf(
		"Env: %s\n"+
			"StoragePath: %s\n"+
			"AdminToken: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Presence:\n"+
			"  WindowSeconds: %d\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		c.StoragePath,
		token,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.WindowSeconds,
		c.RPS,
		c.Burst,
	)
}
