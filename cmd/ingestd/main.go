package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"

	"resume-ingest-go/internal/api/handler"
	"resume-ingest-go/internal/api/router"
	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/constants"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/storage"
	"resume-ingest-go/internal/tracing"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}
	initLogger(cfg)
	logger.Info().Str("address", cfg.Server.Address).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. 链路追踪
	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}

	// 2. 外部依赖：可选的解析结果缓存与消息队列
	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储组件失败")
	}
	var cache processor.ResultCache
	if store.Redis != nil {
		cache = store.Redis
	}

	// 3. 处理器
	resumeProcessor, err := processor.NewProcessorFromConfig(cfg, cache, logger.Logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化简历处理器失败")
	}

	// 4. 可选的上传事件消费者
	var stopConsumer func()
	if store.RabbitMQ != nil {
		consumer := handler.NewIngestConsumer(resumeProcessor, store.RabbitMQ, cfg.RabbitMQ)
		stopConsumer, err = consumer.Start(store.RabbitMQ)
		if err != nil {
			logger.Fatal().Err(err).Msg("启动上传事件消费者失败")
		}
	}

	// 5. HTTP服务器
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(cfg.Server.MaxBodySizeMB<<20),
		server.WithHandleMethodNotAllowed(true),
		server.WithExitWaitTime(config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second)),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	router.RegisterRoutes(h, cfg, handler.NewResumeHandler(resumeProcessor))

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	// 6. 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer shutdownCancel()

	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP服务器关闭失败")
	}
	if stopConsumer != nil {
		stopConsumer()
	}
	store.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("关闭链路追踪失败")
	}

	logger.Info().Msg("优雅退出完成")
}

// initLogger 按配置初始化日志，并让 Hertz 使用同一个 zerolog 实例
func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		Service:      constants.ServiceName,
	})

	hlog.SetLogger(hertzadapter.From(logger.Logger))
	if cfg.Logger.Level == "debug" {
		hlog.SetLevel(hlog.LevelDebug)
	}
}
