package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/types"
)

// ErrCacheMiss 缓存中没有对应的解析结果
var ErrCacheMiss = errors.New("解析结果缓存未命中")

// Redis 封装 Redis 客户端，作为简历解析结果缓存
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
}

// NewRedisAdapter 创建 Redis 连接并检查连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries: cfg.MaxRetries,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return NewRedisCache(client, time.Duration(cfg.ResultTTLHours)*time.Hour), nil
}

// NewRedisCache 使用已有客户端创建缓存，ttl<=0 时不过期
func NewRedisCache(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, ttl: ttl}
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// GetParseResult 读取缓存的解析结果，不存在时返回 ErrCacheMiss
func (r *Redis) GetParseResult(ctx context.Context, key string) (*types.ResumeExtraction, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}

	raw, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("读取解析结果缓存失败: %w", err)
	}

	var result types.ResumeExtraction
	if err := json.Unmarshal(raw, &result); err != nil {
		// 损坏的缓存按未命中处理，下次写入时覆盖
		return nil, fmt.Errorf("%w: %v", ErrCacheMiss, err)
	}
	return &result, nil
}

// SetParseResult 写入解析结果
func (r *Redis) SetParseResult(ctx context.Context, key string, result *types.ResumeExtraction) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if result == nil {
		return fmt.Errorf("解析结果不能为空")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}
	if err := r.Client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("写入解析结果缓存失败: %w", err)
	}
	return nil
}
