package service

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	MaxAttempts     int           // 最大尝试次数
	InitialInterval time.Duration // 初始间隔
	MaxInterval     time.Duration // 最大间隔
	Multiplier      float64       // 间隔乘数
}

// Retry 重试器，写冲突等可重试错误按指数退避重试
type Retry struct {
	config *RetryConfig
	logger *Logger
}

// NewRetry 创建重试器实例
func NewRetry(config *RetryConfig, logger *Logger) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 50 * time.Millisecond
	}
	if config.Multiplier <= 1 {
		config.Multiplier = 2
	}
	return &Retry{
		config: config,
		logger: logger,
	}
}

// Execute 执行fn，shouldRetry返回true的错误触发重试，其余错误立即返回
func (r *Retry) Execute(ctx context.Context, fn func() error, shouldRetry func(error) bool) error {
	interval := r.config.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) || attempt == r.config.MaxAttempts {
			return lastErr
		}

		r.logger.Debug("Retry attempt %d after %v: %v", attempt, interval, lastErr)
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %v", ctx.Err())
		case <-time.After(interval):
		}

		interval = time.Duration(float64(interval) * r.config.Multiplier)
		if r.config.MaxInterval > 0 && interval > r.config.MaxInterval {
			interval = r.config.MaxInterval
		}
	}
	return lastErr
}
