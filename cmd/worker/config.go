package main

import (
	"log"
	"os"
	"strconv"

	"library-lending-backend/internal/config"
)

// Config holds worker-only settings; domain config lives in container.Config
type Config struct {
	Redis       config.RedisConfig
	Jobs        config.JobConfig
	Concurrency int
	HealthAddr  string
}

// loadConfig lấy Redis/Jobs từ app config, phần còn lại từ env của worker
func loadConfig(appCfg *config.Config) *Config {
	cfg := &Config{
		Redis:       appCfg.Redis,
		Jobs:        appCfg.Jobs,
		Concurrency: 10,
		HealthAddr:  ":9999",
	}

	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("WORKER_HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}

	log.Printf("[Config] Redis: %s, Concurrency: %d, Overdue cron: %q",
		cfg.Redis.Host, cfg.Concurrency, cfg.Jobs.OverdueNotifyCron)

	return cfg
}
