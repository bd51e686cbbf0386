package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

// TestLoadConfigFromFile 验证 YAML 中的列表和嵌套字段被正确加载，未设置的字段取默认值
func TestLoadConfigFromFile(t *testing.T) {
	configPath := writeConfig(t, `
server:
  address: ":9090"
  allowed_origins:
    - "https://app.example.com"
    - "https://admin.example.com"
auth:
  api_keys: ["k1", "k2"]
parser:
  skill_policy: section
  max_file_size_mb: 5
rabbitmq:
  enabled: true
  prefetch_count: 20
`)

	cfg, err := LoadConfigFromFileOnly(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.APIKeys)
	assert.Equal(t, "section", cfg.Parser.SkillPolicy)
	assert.Equal(t, int64(5<<20), cfg.MaxFileSizeBytes())
	assert.Equal(t, 11, cfg.Server.MaxBodySizeMB, "请求体上限应根据文件上限推导")
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 20, cfg.RabbitMQ.PrefetchCount)

	// 默认值
	assert.Equal(t, 4, cfg.Parser.Workers)
	assert.Equal(t, "10s", cfg.Parser.DocumentTimeout)
	assert.Equal(t, "q.document_uploaded", cfg.RabbitMQ.UploadedQueue)
	assert.Equal(t, "document.events", cfg.RabbitMQ.DocumentEventsExchange)
	assert.Equal(t, "document.parsed", cfg.RabbitMQ.ParsedRoutingKey)
	assert.Equal(t, 24, cfg.Redis.ResultTTLHours)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

// TestLoadConfigEnvOverrides 验证 RESUME_INGEST_* 环境变量覆盖文件中的值
func TestLoadConfigEnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
server:
  address: ":9090"
parser:
  skill_policy: infer
`)

	t.Setenv(EnvPrefix+"SERVER_ADDRESS", ":7070")
	t.Setenv(EnvPrefix+"SKILL_POLICY", "section")
	t.Setenv(EnvPrefix+"API_KEYS", " a , b ,, ")
	t.Setenv(EnvPrefix+"REDIS_ADDRESS", "redis:6379")
	t.Setenv(EnvPrefix+"RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("ALLOWED_ORIGINS", "https://x.example.com,https://y.example.com")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "section", cfg.Parser.SkillPolicy)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.True(t, cfg.Redis.Enabled, "设置 Redis 地址后应启用缓存")
	assert.Equal(t, 120, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, []string{"https://x.example.com", "https://y.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "显式指定的配置文件不存在时应返回错误")

	_, err = LoadConfigFromFileOnly("")
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	configPath := writeConfig(t, `
parser:
  skill_policy: blended
  workers: -1
`)
	_, err := LoadConfigFromFileOnly(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill_policy")
	assert.Contains(t, err.Error(), "workers")
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := LoadConfigFromFileOnly(path)
	require.NoError(t, err, "示例配置应能被重新加载")
	assert.Equal(t, "pretty", cfg.Logger.Format)
	assert.Equal(t, "infer", cfg.Parser.SkillPolicy)

	assert.Error(t, CreateSampleConfig(path), "文件已存在时不应覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, GetDuration("3s", time.Second))
	assert.Equal(t, time.Second, GetDuration("", time.Second))
	assert.Equal(t, time.Second, GetDuration("soon", time.Second))
}
