package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brodiemcgee/thegloryapp-sub002/metrics"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/conditions"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/dedupe"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gopush"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gosms"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	ErrNoConditions   = errors.New("at least one condition is required")
	ErrFutureTestDate = errors.New("test date cannot be in the future")
)

// ContactResolver returns every contact whose most recent qualifying
// encounter with the reporting user falls inside the lookback window, each
// tagged with its vague elapsed phrase. Called once per condition; results
// across conditions overlap freely.
type ContactResolver interface {
	EligibleContacts(ctx context.Context, reportingUserRef string, testDate time.Time, lookbackDays int) ([]types.ContactToNotify, error)
}

// InAppNotifier persists one durable exposure notice. It does not dedup;
// the engine must.
type InAppNotifier interface {
	CreateInApp(ctx context.Context, recipientRef, conditionID, vagueElapsed string) (uuid.UUID, error)
}

// Engine runs one contact-trace fan-out: resolve, classify, dedup, dispatch.
// It holds no state between runs; the dedup sets live and die with a single
// Run call.
type Engine struct {
	resolver ContactResolver
	notifier InAppNotifier
	pusher   gopush.Pusher
	sender   gosms.Sender
	guard    dedupe.Guard
	log      *zap.Logger
}

// NewEngine wires the engine. pusher, sender and guard may be nil: a nil
// pusher skips push triggers, a nil sender counts SMS deliveries as failed,
// a nil guard disables cross-run dedup.
func NewEngine(resolver ContactResolver, notifier InAppNotifier, pusher gopush.Pusher, sender gosms.Sender, guard dedupe.Guard, log *zap.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		notifier: notifier,
		pusher:   pusher,
		sender:   sender,
		guard:    guard,
		log:      log,
	}
}

// Run executes one fan-out. Only input validation is a hard error; resolver
// and dispatch failures are logged and absorbed so one bad contact or
// condition never blocks the rest. Counts in the result are best-effort
// telemetry.
//
// When a contact qualifies under several conditions, the first condition in
// the caller's input order owns the single notification per channel.
func (e *Engine) Run(ctx context.Context, reportingUserRef string, conditionIDs []string, testDate time.Time) (*types.TraceResult, error) {
	if len(conditionIDs) == 0 {
		metrics.TraceRunsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrNoConditions
	}
	if testDate.After(time.Now()) {
		metrics.TraceRunsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrFutureTestDate
	}
	if reportingUserRef == "" {
		metrics.TraceRunsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("reporting user ref is required")
	}

	timer := prometheus.NewTimer(metrics.TraceRunDuration)
	defer timer.ObserveDuration()

	// Run-scoped dedup, keyed by contact id per channel. Check-then-mark
	// happens on this goroutine only; dispatch fans out afterwards, so a
	// contact can never be dispatched twice even though sends overlap.
	seenApp := make(map[string]bool)
	seenSMS := make(map[string]bool)
	seenManual := make(map[string]bool)

	var appNotified, smsSent atomic.Int64
	var wg sync.WaitGroup
	manual := []types.ContactToNotify{}

	for _, conditionID := range conditionIDs {
		cond := conditions.Lookup(conditionID)

		contacts, err := e.resolver.EligibleContacts(ctx, reportingUserRef, testDate, cond.LookbackDays)
		if err != nil {
			metrics.ResolverFailuresTotal.Inc()
			e.log.Warn("contact resolver failed, skipping condition",
				zap.String("condition", cond.ID),
				zap.Error(err),
			)
			continue
		}

		for _, contact := range contacts {
			contact := contact
			switch Classify(contact) {
			case types.ChannelAppUser:
				if seenApp[contact.ContactID] {
					metrics.ContactsDedupedTotal.WithLabelValues(string(types.ChannelAppUser)).Inc()
					continue
				}
				seenApp[contact.ContactID] = true
				if e.guard != nil && !e.guard.FirstDelivery(ctx, contact.UserRef, cond.ID, testDate) {
					metrics.ContactsDedupedTotal.WithLabelValues(string(types.ChannelAppUser)).Inc()
					continue
				}
				wg.Add(1)
				go func(cond conditions.Condition) {
					defer wg.Done()
					e.dispatchAppUser(ctx, cond, contact, testDate, &appNotified)
				}(cond)

			case types.ChannelSMS:
				if seenSMS[contact.ContactID] {
					metrics.ContactsDedupedTotal.WithLabelValues(string(types.ChannelSMS)).Inc()
					continue
				}
				seenSMS[contact.ContactID] = true
				if e.guard != nil && !e.guard.FirstDelivery(ctx, contact.ContactID, cond.ID, testDate) {
					metrics.ContactsDedupedTotal.WithLabelValues(string(types.ChannelSMS)).Inc()
					continue
				}
				wg.Add(1)
				go func(cond conditions.Condition) {
					defer wg.Done()
					e.dispatchSMS(ctx, cond, contact, testDate, &smsSent)
				}(cond)

			case types.ChannelManual:
				if seenManual[contact.ContactID] {
					metrics.ContactsDedupedTotal.WithLabelValues(string(types.ChannelManual)).Inc()
					continue
				}
				seenManual[contact.ContactID] = true
				manual = append(manual, contact)
			}
		}
	}

	wg.Wait()

	metrics.TraceRunsTotal.WithLabelValues("completed").Inc()
	return &types.TraceResult{
		AppUsersNotified:      int(appNotified.Load()),
		SmsMessagesSent:       int(smsSent.Load()),
		ManualContactsNoPhone: manual,
	}, nil
}

// dispatchAppUser writes the durable in-app record, then fires the push
// trigger. The in-app record is the source of truth: a push failure is
// logged and swallowed, never rolled back into the count. When the record
// cannot be written the guard key claimed for this contact is released, so
// a retried report still reaches them.
func (e *Engine) dispatchAppUser(ctx context.Context, cond conditions.Condition, contact types.ContactToNotify, testDate time.Time, counter *atomic.Int64) {
	timer := prometheus.NewTimer(metrics.NotificationSendDuration.WithLabelValues("postgres", "in_app"))
	_, err := e.notifier.CreateInApp(ctx, contact.UserRef, cond.ID, contact.VagueElapsed)
	timer.ObserveDuration()
	if err != nil {
		metrics.ContactsNotifiedTotal.WithLabelValues(string(types.ChannelAppUser), "failed").Inc()
		e.log.Warn("in-app notification failed",
			zap.String("recipient", contact.UserRef),
			zap.String("condition", cond.ID),
			zap.Error(err),
		)
		if e.guard != nil {
			e.guard.Release(ctx, contact.UserRef, cond.ID, testDate)
		}
		return
	}
	counter.Add(1)
	metrics.ContactsNotifiedTotal.WithLabelValues(string(types.ChannelAppUser), "sent").Inc()

	if e.pusher == nil {
		return
	}
	if err := e.pusher.Trigger(ctx, contact.UserRef); err != nil {
		e.log.Warn("push trigger failed, in-app record already delivered",
			zap.String("recipient", contact.UserRef),
			zap.Error(err),
		)
	}
}

func (e *Engine) dispatchSMS(ctx context.Context, cond conditions.Condition, contact types.ContactToNotify, testDate time.Time, counter *atomic.Int64) {
	if e.sender == nil {
		metrics.ContactsNotifiedTotal.WithLabelValues(string(types.ChannelSMS), "failed").Inc()
		e.log.Warn("no SMS sender configured, contact skipped",
			zap.String("contact", contact.ContactID),
		)
		if e.guard != nil {
			e.guard.Release(ctx, contact.ContactID, cond.ID, testDate)
		}
		return
	}

	body := ComposeSMS(cond, contact)
	sms := gosms.NewSMS(contact.PhoneNumber, body)

	timer := prometheus.NewTimer(metrics.NotificationSendDuration.WithLabelValues("twilio", "sms"))
	err := e.sender.Send(sms)
	timer.ObserveDuration()
	if err != nil {
		metrics.ContactsNotifiedTotal.WithLabelValues(string(types.ChannelSMS), "failed").Inc()
		metrics.ExternalAPIFailure.WithLabelValues("twilio", "tracefan_api").Inc()
		e.log.Warn("SMS send failed",
			zap.String("contact", contact.ContactID),
			zap.String("condition", cond.ID),
			zap.Error(err),
		)
		if e.guard != nil {
			e.guard.Release(ctx, contact.ContactID, cond.ID, testDate)
		}
		return
	}
	counter.Add(1)
	metrics.ContactsNotifiedTotal.WithLabelValues(string(types.ChannelSMS), "sent").Inc()
	metrics.ExternalAPISuccess.WithLabelValues("twilio", "tracefan_api").Inc()
}
