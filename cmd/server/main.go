package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bedrock-kb-api/internal/conf"
	"bedrock-kb-api/internal/kb/biz"
	"bedrock-kb-api/internal/kb/data"
	"bedrock-kb-api/internal/kb/service"
	"bedrock-kb-api/internal/pkg/logger"
	"bedrock-kb-api/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := conf.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(loggerConfig(cfg.Log))
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	if err := logger.InitGlobal(loggerConfig(cfg.Log)); err != nil {
		log.Fatalf("failed to initialize global logger: %v", err)
	}

	// A missing AWS credential chain must not prevent startup; the service
	// reports unavailability through /health and 503s on data endpoints.
	var repo biz.BedrockRepo
	if r, err := data.NewBedrockRepo(context.Background(), cfg.AWS.Region); err != nil {
		appLogger.Warn("bedrock client unavailable, running degraded",
			zap.String("region", cfg.AWS.Region),
			zap.Error(err))
	} else {
		repo = r
	}

	uc := biz.NewKnowledgeBaseUseCase(repo, cfg.AWS.KnowledgeBaseID, cfg.AWS.ModelARN, conf.PlaceholderKnowledgeBaseID)
	kbService := service.NewKnowledgeBaseService(uc, cfg.AWS.Region, cfg.AWS.KnowledgeBaseID, appLogger)
	httpServer := server.NewHTTPServer(cfg, kbService, appLogger)

	go func() {
		if err := httpServer.Start(); err != nil {
			appLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	appLogger.Info("server started",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("region", cfg.AWS.Region),
		zap.Bool("bedrock_available", uc.Available()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		appLogger.Error("server shutdown error", zap.Error(err))
	}
	appLogger.Info("server stopped")
}

func loggerConfig(cfg conf.LogConfig) *logger.Config {
	return &logger.Config{
		Level:            cfg.Level,
		Format:           cfg.Format,
		Output:           cfg.Output,
		EnableCaller:     cfg.EnableCaller,
		EnableStacktrace: cfg.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   cfg.File.Filename,
			MaxSize:    cfg.File.MaxSize,
			MaxAge:     cfg.File.MaxAge,
			MaxBackups: cfg.File.MaxBackups,
			Compress:   cfg.File.Compress,
		},
	}
}
