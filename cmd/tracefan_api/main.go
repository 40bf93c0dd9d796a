package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/brodiemcgee/thegloryapp-sub002/cmd/tracefan_api/app/routes"
	"github.com/brodiemcgee/thegloryapp-sub002/logger"
	"github.com/brodiemcgee/thegloryapp-sub002/metrics"
	"github.com/brodiemcgee/thegloryapp-sub002/middlewares"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/config"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/database"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/dedupe"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/fanout"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gopush"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/kafka"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/models"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/repositories"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/utils"
	"github.com/brodiemcgee/thegloryapp-sub002/tracing"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	logr, err := logger.InitLogger()
	if err != nil {
		panic("Failed to initialize zap logger: " + err.Error())
	}
	defer logr.Sync()
	logr.Info("Logger initialized")

	dsn := os.Getenv("TRACE_DB")
	db, err := database.InitDB(dsn)
	if err != nil {
		panic("DB not init  " + err.Error())
	}
	if err := database.MigrateDB(db, &models.Contact{}, &models.Encounter{}, &models.Notification{}); err != nil {
		logr.Fatal("migration failed", zap.Error(err))
	}

	metrics.InitAPIMetrics()
	metrics.InitKafkaMetrics()

	shutdownTracer := tracing.InitTracer("tracefan_api", logr)
	defer shutdownTracer()
	tracer := otel.Tracer("tracefan_api")

	cfg, err := config.LoadConfig("./config.yaml")
	if err != nil {
		logr.Fatal("failed to load config", zap.Error(err))
	}
	sender, err := config.BuildSender(cfg)
	if err != nil {
		logr.Fatal("failed to init SMS sender", zap.Error(err))
	}
	mailer, err := config.BuildMailer(cfg)
	if err != nil {
		logr.Fatal("failed to init mailer", zap.Error(err))
	}

	producer := kafka.NewProducerFromEnv()
	pusher := gopush.NewKafkaPusher(producer)
	logr.Info("Kafka push producer initialized", zap.String("broker", utils.GetEnv("KAFKA_BROKER")))

	rdb := database.InitRedis(utils.GetEnv("REDIS_ADDR"))
	guard := dedupe.NewRedisGuard(rdb, logr)

	engine := fanout.NewEngine(
		repositories.NewContactRepository(db),
		repositories.NewNotificationRepository(db),
		pusher,
		sender,
		guard,
		logr,
	)

	router := gin.Default()
	router.Use(middlewares.GinMetricsMiddleware())

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api")
	routes.Trace(v1.Group("/trace"), engine, mailer, config.FromAddress(cfg), logr, tracer)
	routes.Notifications(v1.Group("/notifications"), db, logr)
	routes.Conditions(v1.Group("/conditions"))

	go handleShutdown(producer, logr)
	if err := router.Run(":3000"); err != nil {
		logr.Fatal("Failed to start server", zap.Error(err))
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
