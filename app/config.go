package app

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config 從環境變數讀取
type Config struct {
	Port        string        `env:"PORT" envDefault:"3001"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPwd    string        `env:"REDIS_PASSWORD"`
	WebOrigin   string        `env:"WEB_ORIGIN" envDefault:"http://localhost:3000"`
	LockTTL     time.Duration `env:"DEVICE_LOCK_TTL" envDefault:"10s"`
}

// LoadConfig 先讀 .env（沒有也沒關係），再 parse 環境變數
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	err := env.Parse(&cfg)
	return cfg, err
}
