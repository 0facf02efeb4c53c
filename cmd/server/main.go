package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"tradeflow/internal/attestation"
	"tradeflow/internal/booking"
	"tradeflow/internal/commons"
	"tradeflow/internal/infrastructure/logger"
	"tradeflow/internal/infrastructure/mysql"
	"tradeflow/internal/infrastructure/redis"
	"tradeflow/internal/jobs"
	"tradeflow/internal/milestone"
	"tradeflow/internal/milestone/repository"
	"tradeflow/internal/milestone/usecase"
	"tradeflow/internal/server"
)

func main() {
	configPath := pflag.String("config", "internal/config/config.yaml", "path to the YAML config file (empty to skip)")
	envFile := pflag.String("env-file", ".env", "optional dotenv file loaded before reading the environment")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading env file: %v", err)
	}

	cfg, err := commons.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	var publisher usecase.Publisher = redis.NopPublisher{}
	if cfg.Redis.Addr != "" {
		redisPub, err := redis.NewPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("connecting to redis", zap.Error(err))
		}
		defer redisPub.Close()
		publisher = redisPub
		zapLogger.Info("redis connected", zap.String("channel", cfg.Redis.Channel))
	} else {
		zapLogger.Info("redis not configured, milestone notifications disabled")
	}

	milestoneMod := milestone.NewModule(db, cfg, publisher, zapLogger)
	bookingCtrl := booking.NewModule(db, zapLogger)
	attestationCtrl, err := attestation.NewModule(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("creating attestation codec", zap.Error(err))
	}

	if cfg.Jobs.OverdueSchedule != "" {
		overdueJob := jobs.NewOverdueMilestonesJob(
			repository.NewMySQLMilestoneRepository(db),
			publisher,
			cfg.Redis.Channel,
			cfg.Jobs.OverdueSchedule,
			cfg.Server.RequestTimeout,
			zapLogger,
		)
		if err := overdueJob.Start(); err != nil {
			zapLogger.Fatal("starting overdue milestone job", zap.Error(err))
		}
		defer overdueJob.Stop()
	}

	router := server.NewRouter(db, cfg.Server.RequestTimeout, zapLogger, milestoneMod, attestationCtrl, bookingCtrl)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
		return
	}

	if err := milestoneMod.Drain(ctx); err != nil {
		zapLogger.Warn("pending milestone notifications dropped", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
