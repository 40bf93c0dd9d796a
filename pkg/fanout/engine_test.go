package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/conditions"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/gosms"
	"github.com/brodiemcgee/thegloryapp-sub002/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	mu    sync.Mutex
	fn    func(lookbackDays int) ([]types.ContactToNotify, error)
	calls []int
}

func (f *fakeResolver) EligibleContacts(_ context.Context, _ string, _ time.Time, lookbackDays int) ([]types.ContactToNotify, error) {
	f.mu.Lock()
	f.calls = append(f.calls, lookbackDays)
	f.mu.Unlock()
	return f.fn(lookbackDays)
}

type createdRecord struct {
	recipient string
	condition string
	elapsed   string
}

type fakeNotifier struct {
	mu      sync.Mutex
	created []createdRecord
	err     error
}

func (f *fakeNotifier) CreateInApp(_ context.Context, recipientRef, conditionID, vagueElapsed string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.created = append(f.created, createdRecord{recipientRef, conditionID, vagueElapsed})
	return uuid.New(), nil
}

type fakePusher struct {
	mu        sync.Mutex
	triggered []string
	err       error
}

func (f *fakePusher) Trigger(_ context.Context, recipientRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.triggered = append(f.triggered, recipientRef)
	return nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []gosms.SMS
	err  error
}

func (f *fakeSender) Send(s gosms.SMS) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, s)
	return nil
}

type fakeGuard struct {
	mu   sync.Mutex
	seen map[string]bool
}

func guardTestKey(recipientRef, conditionID string, testDate time.Time) string {
	return recipientRef + "|" + conditionID + "|" + testDate.Format("2006-01-02")
}

func (f *fakeGuard) FirstDelivery(_ context.Context, recipientRef, conditionID string, testDate time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	key := guardTestKey(recipientRef, conditionID, testDate)
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}

func (f *fakeGuard) Release(_ context.Context, recipientRef, conditionID string, testDate time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.seen, guardTestKey(recipientRef, conditionID, testDate))
}

func appUser(id, userRef string) types.ContactToNotify {
	return types.ContactToNotify{
		ContactID:    id,
		DisplayName:  "App User " + id,
		UserRef:      userRef,
		VagueElapsed: "about 2 weeks ago",
	}
}

func smsContact(id, phone string) types.ContactToNotify {
	return types.ContactToNotify{
		ContactID:    id,
		DisplayName:  "SMS Contact " + id,
		PhoneNumber:  phone,
		VagueElapsed: "about a month ago",
	}
}

func manualContact(id string) types.ContactToNotify {
	return types.ContactToNotify{
		ContactID:    id,
		DisplayName:  "Manual Contact " + id,
		VagueElapsed: "in the last week",
	}
}

func testEngine(resolver ContactResolver, notifier *fakeNotifier, pusher *fakePusher, sender *fakeSender) *Engine {
	return NewEngine(resolver, notifier, pusher, sender, nil, zap.NewNop())
}

func TestRunRejectsEmptyConditionList(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		t.Fatal("resolver must not be called for invalid input")
		return nil, nil
	}}
	e := testEngine(resolver, &fakeNotifier{}, &fakePusher{}, &fakeSender{})

	_, err := e.Run(context.Background(), "user-1", nil, time.Now())
	assert.ErrorIs(t, err, ErrNoConditions)
}

func TestRunRejectsFutureTestDate(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		t.Fatal("resolver must not be called for invalid input")
		return nil, nil
	}}
	e := testEngine(resolver, &fakeNotifier{}, &fakePusher{}, &fakeSender{})

	_, err := e.Run(context.Background(), "user-1", []string{"chlamydia"}, time.Now().Add(48*time.Hour))
	assert.ErrorIs(t, err, ErrFutureTestDate)
}

func TestRunSingleConditionAllChannels(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{
			appUser("a", "user-a"),
			smsContact("b", "+14155552671"),
			manualContact("c"),
		}, nil
	}}
	notifier := &fakeNotifier{}
	pusher := &fakePusher{}
	sender := &fakeSender{}
	e := testEngine(resolver, notifier, pusher, sender)

	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.AppUsersNotified)
	assert.Equal(t, 1, result.SmsMessagesSent)
	require.Len(t, result.ManualContactsNoPhone, 1)
	assert.Equal(t, "c", result.ManualContactsNoPhone[0].ContactID)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, "user-a", notifier.created[0].recipient)
	assert.Equal(t, "chlamydia", notifier.created[0].condition)
	assert.Equal(t, []string{"user-a"}, pusher.triggered)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+14155552671", sender.sent[0].To)
}

func TestRunDedupsContactAcrossConditions(t *testing.T) {
	// Contact A qualifies under both windows; first condition in input
	// order owns the single notification.
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{
			appUser("a", "user-a"),
			smsContact("b", "+14155552671"),
		}, nil
	}}
	notifier := &fakeNotifier{}
	pusher := &fakePusher{}
	sender := &fakeSender{}
	e := testEngine(resolver, notifier, pusher, sender)

	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia", "syphilis"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.AppUsersNotified)
	assert.Equal(t, 1, result.SmsMessagesSent)
	require.Len(t, notifier.created, 1)
	assert.Equal(t, "chlamydia", notifier.created[0].condition)
	assert.Len(t, pusher.triggered, 1)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, []int{30, 90}, resolver.calls, "one resolver call per condition window")
}

func TestRunManualContactListedOnceAcrossConditions(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{manualContact("c")}, nil
	}}
	e := testEngine(resolver, &fakeNotifier{}, &fakePusher{}, &fakeSender{})

	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia", "syphilis", "hiv"}, time.Now())
	require.NoError(t, err)

	assert.Len(t, result.ManualContactsNoPhone, 1)
	assert.Equal(t, 0, result.AppUsersNotified)
	assert.Equal(t, 0, result.SmsMessagesSent)
}

func TestRunPushFailureDoesNotAffectInAppDelivery(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{appUser("a", "user-a")}, nil
	}}
	notifier := &fakeNotifier{}
	pusher := &fakePusher{err: errors.New("gateway down")}
	e := testEngine(resolver, notifier, pusher, &fakeSender{})

	result, err := e.Run(context.Background(), "user-1", []string{"hiv"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.AppUsersNotified)
	assert.Len(t, notifier.created, 1)
}

func TestRunInAppFailureMarksContactProcessed(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{appUser("a", "user-a")}, nil
	}}
	notifier := &fakeNotifier{err: errors.New("db down")}
	pusher := &fakePusher{}
	e := testEngine(resolver, notifier, pusher, &fakeSender{})

	// Two conditions both resolve contact A; the failed first dispatch must
	// not be retried under the second condition within the run.
	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia", "syphilis"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, result.AppUsersNotified)
	assert.Empty(t, pusher.triggered, "no push without a durable in-app record")
}

func TestRunSmsFailureDoesNotBlockOtherContacts(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{
			smsContact("b", "+14155552671"),
			appUser("a", "user-a"),
		}, nil
	}}
	notifier := &fakeNotifier{}
	sender := &fakeSender{err: errors.New("twilio 500")}
	e := testEngine(resolver, notifier, &fakePusher{}, sender)

	result, err := e.Run(context.Background(), "user-1", []string{"gonorrhea"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 0, result.SmsMessagesSent)
	assert.Equal(t, 1, result.AppUsersNotified, "app-user dispatch unaffected by SMS failure")
}

func TestRunResolverFailureSkipsConditionOnly(t *testing.T) {
	resolver := &fakeResolver{fn: func(lookbackDays int) ([]types.ContactToNotify, error) {
		if lookbackDays == 30 {
			return nil, errors.New("query timeout")
		}
		return []types.ContactToNotify{appUser("a", "user-a")}, nil
	}}
	notifier := &fakeNotifier{}
	e := testEngine(resolver, notifier, &fakePusher{}, &fakeSender{})

	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia", "syphilis"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, result.AppUsersNotified)
	require.Len(t, notifier.created, 1)
	assert.Equal(t, "syphilis", notifier.created[0].condition)
}

func TestRunTotalResolverFailureYieldsZeroResult(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return nil, errors.New("down")
	}}
	e := testEngine(resolver, &fakeNotifier{}, &fakePusher{}, &fakeSender{})

	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia", "syphilis"}, time.Now())
	require.NoError(t, err, "total resolver failure is not a run error")

	assert.Equal(t, 0, result.AppUsersNotified)
	assert.Equal(t, 0, result.SmsMessagesSent)
	assert.Empty(t, result.ManualContactsNoPhone)
}

func TestRunUnknownConditionUsesDefaultWindow(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return nil, nil
	}}
	e := testEngine(resolver, &fakeNotifier{}, &fakePusher{}, &fakeSender{})

	_, err := e.Run(context.Background(), "user-1", []string{"not-a-condition"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []int{conditions.DefaultLookbackDays}, resolver.calls)
}

func TestRunSmsBodyNeverLeaksDateOrReporter(t *testing.T) {
	encounter := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{{
			ContactID:     "b",
			DisplayName:   "B",
			PhoneNumber:   "+14155552671",
			VagueElapsed:  "about 2 weeks ago",
			EncounterDate: encounter,
		}}, nil
	}}
	sender := &fakeSender{}
	e := testEngine(resolver, &fakeNotifier{}, &fakePusher{}, sender)

	_, err := e.Run(context.Background(), "reporter-secret-ref", []string{"syphilis"}, time.Now())
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	body := sender.sent[0].Text
	assert.NotContains(t, body, "reporter-secret-ref")
	assert.NotContains(t, body, "2025")
	assert.NotContains(t, body, "Jan")
	assert.Contains(t, body, "about 2 weeks ago")
	assert.Contains(t, body, "Syphilis")
}

func TestRunInAppRecordCarriesVaguePhraseNotDate(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		c := appUser("a", "user-a")
		c.EncounterDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
		return []types.ContactToNotify{c}, nil
	}}
	notifier := &fakeNotifier{}
	e := testEngine(resolver, notifier, &fakePusher{}, &fakeSender{})

	_, err := e.Run(context.Background(), "user-1", []string{"hpv"}, time.Now())
	require.NoError(t, err)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, "about 2 weeks ago", notifier.created[0].elapsed)
	assert.NotContains(t, notifier.created[0].elapsed, "2025")
}

func TestRunCrossRunGuardSuppressesSecondRun(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{appUser("a", "user-a")}, nil
	}}
	notifier := &fakeNotifier{}
	guard := &fakeGuard{}
	e := NewEngine(resolver, notifier, &fakePusher{}, &fakeSender{}, guard, zap.NewNop())

	testDate := time.Now().Add(-24 * time.Hour)

	first, err := e.Run(context.Background(), "user-1", []string{"hiv"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AppUsersNotified)

	second, err := e.Run(context.Background(), "user-1", []string{"hiv"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AppUsersNotified, "guard suppresses the duplicate run")
	assert.Len(t, notifier.created, 1)
}

func TestRunGuardReleasedWhenInAppDeliveryFails(t *testing.T) {
	// A failed dispatch must give its guard key back: the same report
	// retried after the store recovers still has to reach the contact.
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{appUser("a", "user-a")}, nil
	}}
	notifier := &fakeNotifier{err: errors.New("db down")}
	guard := &fakeGuard{}
	e := NewEngine(resolver, notifier, &fakePusher{}, &fakeSender{}, guard, zap.NewNop())

	testDate := time.Now().Add(-24 * time.Hour)

	first, err := e.Run(context.Background(), "user-1", []string{"hiv"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, first.AppUsersNotified)
	assert.Empty(t, notifier.created)

	notifier.err = nil

	second, err := e.Run(context.Background(), "user-1", []string{"hiv"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, second.AppUsersNotified, "retry after recovery must deliver")
	require.Len(t, notifier.created, 1)
	assert.Equal(t, "user-a", notifier.created[0].recipient)
}

func TestRunGuardReleasedWhenSmsDeliveryFails(t *testing.T) {
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return []types.ContactToNotify{smsContact("b", "+14155552671")}, nil
	}}
	sender := &fakeSender{err: errors.New("twilio 500")}
	guard := &fakeGuard{}
	e := NewEngine(resolver, &fakeNotifier{}, &fakePusher{}, sender, guard, zap.NewNop())

	testDate := time.Now().Add(-24 * time.Hour)

	first, err := e.Run(context.Background(), "user-1", []string{"gonorrhea"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, first.SmsMessagesSent)

	sender.err = nil

	second, err := e.Run(context.Background(), "user-1", []string{"gonorrhea"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SmsMessagesSent, "retry after recovery must deliver")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+14155552671", sender.sent[0].To)
}

func TestRunManyContactsConcurrentDispatchCountsExactly(t *testing.T) {
	var contacts []types.ContactToNotify
	for i := 0; i < 40; i++ {
		contacts = append(contacts, appUser(fmt.Sprintf("app-%d", i), fmt.Sprintf("ref-%d", i)))
	}
	resolver := &fakeResolver{fn: func(int) ([]types.ContactToNotify, error) {
		return contacts, nil
	}}
	notifier := &fakeNotifier{}
	e := testEngine(resolver, notifier, &fakePusher{}, &fakeSender{})

	// Every contact also reappears under the second condition.
	result, err := e.Run(context.Background(), "user-1", []string{"chlamydia", "syphilis"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 40, result.AppUsersNotified)
	assert.Len(t, notifier.created, 40)
}
