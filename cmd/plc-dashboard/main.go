package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/tonton108/plc-dashboard/internal/broadcast"
	"github.com/tonton108/plc-dashboard/internal/config"
	"github.com/tonton108/plc-dashboard/internal/consumer"
	"github.com/tonton108/plc-dashboard/internal/database"
	httpapi "github.com/tonton108/plc-dashboard/internal/http"
	"github.com/tonton108/plc-dashboard/internal/logger"
	"github.com/tonton108/plc-dashboard/internal/mqtt"
	"github.com/tonton108/plc-dashboard/internal/repository"
	"github.com/tonton108/plc-dashboard/internal/service"
)

func main() {
	// 1. 加载配置
	cfg := config.Load()

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 初始化数据库
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 4. 初始化 Redis（广播 + 最新数据缓存）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 5. Repository
	equipmentRepo := repository.NewPostgresEquipmentRepository(db)
	measurementRepo := repository.NewPostgresMeasurementRepository(db)
	summaryRepo := repository.NewPostgresSummaryRepository(db)

	// 6. 服务
	broadcaster := broadcast.NewRedisBroadcaster(redisClient)
	latestCache := broadcast.NewLatestCache(redisClient, 10*time.Minute)
	ingestService := service.NewIngestService(equipmentRepo, measurementRepo, broadcaster, latestCache, log)
	queryService := service.NewQueryService(equipmentRepo, measurementRepo, summaryRepo, log)
	aggregationService := service.NewAggregationService(equipmentRepo, measurementRepo, summaryRepo, log)
	cleanupService := service.NewCleanupService(measurementRepo, cfg.Retention.BatchSize, cfg.Retention.BatchPause, log)
	scheduler := service.NewScheduler(aggregationService, cleanupService, cfg.Scheduler.Interval, cfg.Retention.Days, log)

	// 7. HTTP 路由
	router := httpapi.NewRouter(log)
	router.RegisterTelemetryRoutes(
		httpapi.NewTelemetryHandler(ingestService, queryService, latestCache, log),
		httpapi.NewStatsHandler(equipmentRepo, measurementRepo, summaryRepo, log),
	)
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(scheduler, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. 调度器（后台）
	go func() {
		if err := scheduler.Start(ctx); err != nil {
			log.Error("Scheduler exited with error", zap.Error(err))
		}
	}()

	// 9. MQTT 接入（可选）
	var mqttConsumer *consumer.MQTTConsumer
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.NewClient(cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer mqttClient.Disconnect()

		mqttConsumer = consumer.NewMQTTConsumer(cfg, mqttClient, ingestService, log)
		go func() {
			if err := mqttConsumer.Start(ctx); err != nil {
				log.Error("MQTT consumer exited with error", zap.Error(err))
			}
		}()
	}

	// 10. HTTP 服务
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 11. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		log.Error("HTTP server error", zap.Error(err))
		cancel()
	}

	if mqttConsumer != nil {
		mqttConsumer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}
