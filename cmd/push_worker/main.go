package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brodiemcgee/thegloryapp-sub002/cmd/push_worker/service"
	"github.com/brodiemcgee/thegloryapp-sub002/logger"
	"github.com/brodiemcgee/thegloryapp-sub002/metrics"
	"github.com/brodiemcgee/thegloryapp-sub002/middlewares"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/config"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/kafka"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	logr, err := logger.InitLogger()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logr.Sync()

	broker := utils.GetEnv("KAFKA_BROKER")
	logr.Info("Kafka broker loaded", zap.String("broker", broker))
	producer := kafka.NewProducerFromEnv()
	logr.Info("Starting push worker")

	metrics.InitWorkerMetrics()
	metrics.InitKafkaMetrics()

	cfg, err := config.LoadConfig("./config.yaml")
	if err != nil {
		logr.Fatal("failed to load config", zap.Error(err))
	}
	gateway, err := config.BuildGateway(cfg)
	if err != nil {
		logr.Fatal("failed to init push gateway client", zap.Error(err))
	}
	logr.Info("Push gateway client initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.HandlePush(broker, ctx, gateway, logr, producer)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	wrappedMux := middlewares.MetricsMiddleware(mux)
	go handleShutdown(producer, logr)

	if err := http.ListenAndServe(":3003", wrappedMux); err != nil {
		logr.Fatal("metrics server failed", zap.Error(err))
	}
}

func handleShutdown(producer *kafka.Producer, log *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", zap.String("signal", sig.String()))

	if err := producer.Close(); err != nil {
		log.Error("Error closing Kafka producer", zap.Error(err))
	} else {
		log.Info("Kafka producer closed cleanly")
	}
	os.Exit(0)
}
