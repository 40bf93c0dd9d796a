package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/fanout"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gomailer"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/types"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type TraceHandler struct {
	engine *fanout.Engine
	mailer gomailer.Mailer
	from   string
}

func NewTraceHandler(engine *fanout.Engine, mailer gomailer.Mailer, fromMail string) *TraceHandler {
	return &TraceHandler{engine: engine, mailer: mailer, from: fromMail}
}

// RunTrace kicks off one fan-out. The caller always gets an aggregate
// summary back; only input validation surfaces as an error response.
func (h *TraceHandler) RunTrace(log *zap.Logger, tracer trace.Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.TraceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		if tracer != nil {
			var span trace.Span
			ctx, span = tracer.Start(ctx, "trace.fanout")
			defer span.End()
		}

		log.Info("contact-trace fan-out requested",
			zap.Int("conditions", len(req.ConditionIDs)),
			zap.String("client_ip", c.ClientIP()),
		)

		result, err := h.engine.Run(ctx, req.ReportingUserRef, req.ConditionIDs, req.TestDate)
		if err != nil {
			// the engine only surfaces validation failures; everything
			// transient is absorbed into the aggregate
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.NotifyEmail != "" && len(result.ManualContactsNoPhone) > 0 {
			h.sendSummaryEmail(req.NotifyEmail, result, log)
		}

		c.JSON(http.StatusOK, result)
	}
}

// sendSummaryEmail reminds the reporting user which contacts they have to
// reach in person. It goes to the reporter only and is best-effort.
func (h *TraceHandler) sendSummaryEmail(to string, result *types.TraceResult, log *zap.Logger) {
	if h.mailer == nil {
		return
	}

	var names []string
	for _, contact := range result.ManualContactsNoPhone {
		names = append(names, contact.DisplayName)
	}
	body := fmt.Sprintf(
		"We notified %d app users and sent %d text messages for you.\n\n"+
			"These contacts have no app account or phone number on file, so please let them know in person:\n%s\n",
		result.AppUsersNotified, result.SmsMessagesSent,
		"- "+strings.Join(names, "\n- "),
	)

	email := gomailer.NewEmail(
		h.from,
		[]string{to},
		gomailer.WithSubject("Some contacts need a personal follow-up"),
		gomailer.WithText(body),
	)
	if err := h.mailer.Send(email); err != nil {
		log.Warn("summary email failed", zap.Error(err))
	}
}
