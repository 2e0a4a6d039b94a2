package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/parceldesk/parceldesk/internal/cache"
	"github.com/parceldesk/parceldesk/internal/config"
	"github.com/parceldesk/parceldesk/internal/db"
	"github.com/parceldesk/parceldesk/internal/importer"
	"github.com/parceldesk/parceldesk/internal/kafka"
	"github.com/parceldesk/parceldesk/internal/logger"
	"github.com/parceldesk/parceldesk/internal/repository/postgresql"
	"github.com/parceldesk/parceldesk/internal/server"
	"github.com/parceldesk/parceldesk/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zapLogger := logger.New()
	defer zapLogger.Sync()

	cfg := config.Load()

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		zapLogger.Fatal("Database init error", zap.Error(err))
	}
	defer database.GetPool().Close()

	parcelRepo := postgresql.NewParcelRepo(database)

	stats := cache.NewStatsCache()
	if err := stats.Load(ctx, parcelRepo); err != nil {
		zapLogger.Warn("Failed to warm stats cache", zap.Error(err))
	}

	stg := storage.NewPostgresStorage(database, parcelRepo, stats, cfg.ImportTxMaxWait, cfg.ImportTxTimeout)
	fileImporter := importer.New(stg, zapLogger)

	var producer kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewWriterProducer(cfg.KafkaBrokers)
		zapLogger.Info("Audit log producer connected", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		producer = kafka.NewConsoleProducer()
		zapLogger.Info("No Kafka brokers configured, audit logs go to stdout")
	}
	defer producer.Close()

	srv, err := server.New(stg, fileImporter, cfg.GatePassword, zapLogger, producer, cfg.AuditTopic)
	if err != nil {
		zapLogger.Fatal("Failed to create server", zap.Error(err))
	}

	go func() {
		if err := srv.Run(ctx, cfg.HTTPPort); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	zapLogger.Info("Server started", zap.String("port", cfg.HTTPPort))

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
