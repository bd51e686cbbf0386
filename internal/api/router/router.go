package router

import (
	"context"
	"crypto/subtle"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-ingest-go/internal/api/handler"
	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/pkg/ratelimit"
)

// RegisterRoutes 注册 API 路由。健康检查不需要鉴权
func RegisterRoutes(h *server.Hertz, cfg *config.Config, resumeHandler *handler.ResumeHandler) {
	h.Use(CORS(cfg.Server.AllowedOrigins))
	// 预检请求由 CORS 中间件直接返回 204
	h.OPTIONS("/*path", func(context.Context, *app.RequestContext) {})

	api := h.Group("/api/v1")
	api.GET("/health", resumeHandler.HandleHealth)

	middlewares := append(APIKeyAuth(cfg.Auth.APIKeys),
		RateLimit(cfg.Server.RateLimitPerMinute, cfg.Server.RateLimitBurst)...)
	protected := api.Group("", middlewares...)
	protected.POST("/resume/parse", resumeHandler.HandleResumeParse)
	protected.POST("/documents/extract", resumeHandler.HandleDocumentExtract)
	protected.POST("/linkedin/parse", resumeHandler.HandleLinkedInParse)
}

// CORS 跨域处理。allowedOrigins 为空时允许任意来源
func CORS(allowedOrigins []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	_, wildcard := allowed["*"]

	return func(ctx context.Context, c *app.RequestContext) {
		origin := string(c.GetHeader("Origin"))
		switch {
		case len(allowed) == 0 || wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if string(c.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}

// APIKeyAuth 返回 Bearer API Key 鉴权中间件，keys 为空时不启用
func APIKeyAuth(keys []string) []app.HandlerFunc {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			valid = append(valid, []byte(k))
		}
	}
	if len(valid) == 0 {
		return nil
	}

	return []app.HandlerFunc{keyauth.New(
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, v := range valid {
				if subtle.ConstantTimeCompare(v, []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		}),
		keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
			logger.Ctx(ctx).Warn().
				Err(err).
				Str("path", string(c.Path())).
				Msg("API Key 鉴权失败")
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{
				"error":    "Unauthorized",
				"warnings": []string{},
			})
		}),
	)}
}

// RateLimit 按客户端 IP 限流，perMinute <= 0 时不启用
func RateLimit(perMinute, burst int) []app.HandlerFunc {
	if perMinute <= 0 {
		return nil
	}
	limiter := ratelimit.NewLimiter(perMinute, burst)

	return []app.HandlerFunc{func(ctx context.Context, c *app.RequestContext) {
		ok, wait := limiter.Reserve(c.ClientIP())
		if ok {
			c.Next(ctx)
			return
		}
		logger.Ctx(ctx).Warn().
			Str("client_ip", c.ClientIP()).
			Dur("retry_after", wait).
			Msg("请求过于频繁")
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{
			"error":    "Too Many Requests",
			"warnings": []string{},
		})
	}}
}
