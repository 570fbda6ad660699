package queue

import (
	"library-lending-backend/internal/config"

	"github.com/hibiken/asynq"
)

func RedisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewClient tạo asynq client dùng để enqueue task từ API
func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisClientOpt(cfg))
}
