package routes

import (
	"github.com/brodiemcgee/thegloryapp-sub002/cmd/tracefan_api/app/internal/handler"
	"github.com/brodiemcgee/thegloryapp-sub002/middlewares"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/fanout"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gomailer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func Trace(router *gin.RouterGroup, engine *fanout.Engine, mailer gomailer.Mailer, fromMail string, log *zap.Logger, tracer trace.Tracer) {
	traceHandler := handler.NewTraceHandler(engine, mailer, fromMail)
	limiter := middlewares.NewRateLimiter(rate.Limit(1), 3)

	router.POST("/", limiter.Middleware(), traceHandler.RunTrace(log, tracer))
}

func Notifications(router *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	notificationHandler := handler.NewNotificationHandler(db)

	router.GET("/user/:ref", notificationHandler.ListForRecipient)
	router.GET("/:id", notificationHandler.GetNotification)
	router.POST("/:id/read", notificationHandler.MarkRead)
}

func Conditions(router *gin.RouterGroup) {
	router.GET("/", handler.ListConditions)
}
