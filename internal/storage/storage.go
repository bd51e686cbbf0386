package storage

import (
	"context"
	"fmt"

	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/logger"
)

// Storage 存储管理器，聚合外部依赖。未启用的组件为 nil
type Storage struct {
	// 消息队列
	RabbitMQ *RabbitMQ

	// 解析结果缓存
	Redis *Redis
}

// NewStorage 按配置初始化存储组件。
// Redis 只是缓存，连接失败时记录警告并继续；启用了 RabbitMQ 但无法连接时返回错误。
func NewStorage(_ context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}

	if cfg.Redis.Enabled {
		r, err := NewRedisAdapter(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis不可用，解析结果缓存已禁用")
		} else {
			s.Redis = r
			logger.Info().Msg("Redis解析结果缓存已启用")
		}
	} else {
		logger.Info().Msg("Redis未启用, 跳过初始化")
	}

	if cfg.RabbitMQ.Enabled {
		mq, err := NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("初始化RabbitMQ失败: %w", err)
		}
		if err := mq.SetupTopology(); err != nil {
			s.RabbitMQ = mq
			s.Close()
			return nil, fmt.Errorf("声明RabbitMQ拓扑失败: %w", err)
		}
		s.RabbitMQ = mq
	}

	return s, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
