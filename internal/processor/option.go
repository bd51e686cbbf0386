package processor

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"resume-ingest-go/internal/parser"
	"resume-ingest-go/internal/types"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithCache 设置解析结果缓存，传 nil 表示不使用缓存
func WithCache(cache ResultCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// WithTracer 设置 tracer
func WithTracer(tracer trace.Tracer) ComponentOpt {
	return func(c *Components) {
		if tracer != nil {
			c.Tracer = tracer
		}
	}
}

// WithExtractor 替换某种格式的文本提取器
func WithExtractor(format types.DocumentFormat, extractor Extractor) ComponentOpt {
	return func(c *Components) {
		if c.Extractors == nil {
			c.Extractors = make(map[types.DocumentFormat]Extractor)
		}
		c.Extractors[format] = extractor
	}
}

// ----- 设置选项 -----

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}

// WithSkillPolicy 设置技能推断策略
func WithSkillPolicy(policy parser.SkillPolicy) SettingOpt {
	return func(s *Settings) {
		if policy != "" {
			s.SkillPolicy = policy
		}
	}
}

// WithReferenceYear 固定计算工作年限的基准年份
func WithReferenceYear(year int) SettingOpt {
	return func(s *Settings) {
		s.ReferenceYear = year
	}
}

// WithMaxFileSize 单个文件大小上限(字节)，0 表示不限制
func WithMaxFileSize(bytes int64) SettingOpt {
	return func(s *Settings) {
		s.MaxFileSize = bytes
	}
}

// WithWorkers 批量处理的并发数
func WithWorkers(n int) SettingOpt {
	return func(s *Settings) {
		if n > 0 {
			s.Workers = n
		}
	}
}

// WithDocumentTimeout 单个文档的处理超时，0 表示不限制
func WithDocumentTimeout(d time.Duration) SettingOpt {
	return func(s *Settings) {
		s.DocumentTimeout = d
	}
}
