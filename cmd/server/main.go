package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viralcut/config"
	"viralcut/internal/handler"
	"viralcut/internal/queue"
	"viralcut/internal/router"
	"viralcut/internal/service"
	"viralcut/internal/storage"
	"viralcut/internal/taskrunner"
	"viralcut/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	created, err := config.LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("加载配置失败 failed to load config", zap.Error(err))
		return
	}
	if created {
		log.GetLogger().Info("已生成默认配置，请填写后重新启动 default config generated, fill it in and restart")
		return
	}
	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("配置校验失败 config validation failed", zap.Error(err))
		return
	}

	// Initialize Database
	storage.InitDB()

	// Mark any stale "running" jobs as failed (zombie cleanup)
	if count, err := storage.MarkStaleJobs(); err != nil {
		log.GetLogger().Warn("Failed to mark stale jobs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale jobs as failed", zap.Int64("count", count))
	}

	storage.ResolveBinPaths()

	svc := service.NewService()

	// Execution backend: Redis queue when configured, in-process workers
	// otherwise.
	if config.Conf.Queue.RedisAddr != "" {
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		defer q.Close()
		svc.Submitter = q
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("队列工作进程退出 queue worker exited", zap.Error(err))
			}
		}()
		log.GetLogger().Info("使用 Redis 队列执行后端 using Redis queue backend",
			zap.String("addr", config.Conf.Queue.RedisAddr))
	} else {
		runner := taskrunner.New(svc, taskrunner.Config{
			QueueSize:   config.Conf.Pipeline.QueueSize,
			Concurrency: config.Conf.Pipeline.Workers,
		})
		defer runner.Close()
		svc.Submitter = runner
		log.GetLogger().Info("使用进程内任务执行后端 using in-process runner backend",
			zap.Int("workers", config.Conf.Pipeline.Workers))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()
	router.SetupRouter(engine, handler.NewHandlerWithService(svc))

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("服务已启动 server listening", zap.String("addr", addr))
	if err := engine.Run(addr); err != nil {
		log.GetLogger().Error("后端服务启动失败 server failed", zap.Error(err))
		os.Exit(1)
	}
}
