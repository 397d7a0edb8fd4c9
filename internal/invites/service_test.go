package invites

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hezo-be/webinar-backend/internal/metrics"
	"github.com/hezo-be/webinar-backend/internal/models"
	"github.com/hezo-be/webinar-backend/internal/notify"
	"github.com/hezo-be/webinar-backend/internal/webinars"
)

func newTestService(t *testing.T) (*Service, *memoryStore, *fakeDispatcher, *memoryEmailLogs) {
	t.Helper()
	store := newMemoryStore()
	disp := &fakeDispatcher{}
	logs := &memoryEmailLogs{}
	svc := NewService(store, webinarGetter{store}, disp, logs, nil, "https://hezo.be/", 0, zaptest.NewLogger(t))
	return svc, store, disp, logs
}

func TestCreate_BulkRoundTripAccounting(t *testing.T) {
	svc, store, disp, logs := newTestService(t)
	w := store.addWebinar("Dementie thuis", true)

	in := []models.Recipient{
		{Name: strPtr("Jan"), Email: strPtr("jan@x.be")},
		{Email: strPtr("fail@x.be")},
		{Name: strPtr("Anon")},
		{Name: strPtr("Piet"), Email: strPtr("piet@x.be")},
		{},
	}
	res, err := svc.Create(context.Background(), w.ID, in, nil, true)
	require.NoError(t, err)

	require.Len(t, res.Invites, len(in))
	tokens := map[string]bool{}
	for _, inv := range res.Invites {
		assert.True(t, ValidToken(inv.Token))
		assert.False(t, tokens[inv.Token])
		tokens[inv.Token] = true
	}

	withEmail := 3
	assert.Equal(t, withEmail, res.EmailsSent+len(res.EmailErrors))
	assert.Equal(t, 2, res.EmailsSent)
	require.Len(t, res.EmailErrors, 1)
	assert.Equal(t, "fail@x.be", res.EmailErrors[0].Email)
	assert.Equal(t, res.Invites[1].ID, res.EmailErrors[0].InviteID)
	assert.Equal(t, "mailbox unavailable", res.EmailErrors[0].Error)

	require.Len(t, disp.sent, 2)
	assert.Equal(t, "https://hezo.be/webinar/"+res.Invites[0].Token, disp.sent[0].Link)
	assert.Equal(t, "Dementie thuis", disp.sent[0].WebinarTitle)

	require.Len(t, logs.logs, 3)
	assert.Equal(t, models.EmailLogStatusFailed, logs.logs[1].Status)
	assert.Equal(t, 5, store.count())
}

func TestCreate_NoDispatcherReportsEveryEmail(t *testing.T) {
	store := newMemoryStore()
	w := store.addWebinar("Intro", true)
	svc := NewService(store, webinarGetter{store}, nil, nil, nil, "https://hezo.be", 0, nil)

	res, err := svc.Create(context.Background(), w.ID, []models.Recipient{
		{Email: strPtr("a@x.be")}, {Email: strPtr("b@x.be")},
	}, nil, true)
	require.NoError(t, err)
	assert.Len(t, res.Invites, 2)
	assert.Zero(t, res.EmailsSent)
	require.Len(t, res.EmailErrors, 2)
	assert.Equal(t, notify.ErrNotConfigured.Error(), res.EmailErrors[0].Error)
}

func TestCreate_WithoutSendEmail(t *testing.T) {
	svc, store, disp, _ := newTestService(t)
	w := store.addWebinar("Intro", true)

	res, err := svc.Create(context.Background(), w.ID, []models.Recipient{{Email: strPtr("a@x.be")}}, nil, false)
	require.NoError(t, err)
	assert.Zero(t, res.EmailsSent)
	assert.Empty(t, res.EmailErrors)
	assert.NotNil(t, res.EmailErrors)
	assert.Empty(t, disp.sent)
}

func TestCreate_Validation(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	w := store.addWebinar("Intro", true)
	ctx := context.Background()

	_, err := svc.Create(ctx, w.ID, nil, nil, false)
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = svc.Create(ctx, w.ID, make([]models.Recipient, MaxBatch+1), nil, false)
	assert.ErrorIs(t, err, ErrTooMany)

	_, err = svc.Create(ctx, uuid.New(), []models.Recipient{{}}, nil, false)
	assert.ErrorIs(t, err, webinars.ErrNotFound)

	_, err = svc.CreateAnonymous(ctx, w.ID, MaxBatch+1, nil)
	assert.ErrorIs(t, err, ErrTooMany)

	assert.Zero(t, store.count())
}

func TestCreate_StoreFailureReturnsError(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	w := store.addWebinar("Intro", true)
	store.failNext = true

	_, err := svc.Create(context.Background(), w.ID, []models.Recipient{{}, {}, {}}, nil, false)
	require.Error(t, err)
	assert.Zero(t, store.count())
}

// deadlineDispatcher blocks each send until ctx is done and records the deadline it saw.
type deadlineDispatcher struct {
	deadline time.Time
}

func (d *deadlineDispatcher) Dispatch(ctx context.Context, msgs []notify.Message) []notify.Result {
	d.deadline, _ = ctx.Deadline()
	<-ctx.Done()
	results := make([]notify.Result, len(msgs))
	for i, m := range msgs {
		results[i] = notify.Result{Message: m, Err: ctx.Err()}
	}
	return results
}

func TestCreate_DispatchBudgetBoundsEmailPhase(t *testing.T) {
	store := newMemoryStore()
	w := store.addWebinar("Intro", true)
	disp := &deadlineDispatcher{}
	budget := 50 * time.Millisecond
	svc := NewService(store, webinarGetter{store}, disp, nil, nil, "https://hezo.be", budget, zaptest.NewLogger(t))

	start := time.Now()
	res, err := svc.Create(context.Background(), w.ID, []models.Recipient{{Email: strPtr("a@x.be")}}, nil, true)
	require.NoError(t, err)

	assert.WithinDuration(t, start.Add(budget), disp.deadline, time.Second)
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, res.Invites, 1)
	require.Len(t, res.EmailErrors, 1)
	assert.Contains(t, res.EmailErrors[0].Error, "deadline exceeded")
}

func TestNewService_DefaultDispatchBudget(t *testing.T) {
	svc := NewService(newMemoryStore(), nil, nil, nil, nil, "https://hezo.be", 0, nil)
	assert.Equal(t, DefaultDispatchBudget, svc.budget)
	assert.Less(t, DefaultDispatchBudget, 120*time.Second)
}

func TestCreate_TrimsBlankFields(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	w := store.addWebinar("Intro", true)

	res, err := svc.Create(context.Background(), w.ID, []models.Recipient{{Name: strPtr("  An  "), Email: strPtr("   ")}}, nil, true)
	require.NoError(t, err)
	require.Len(t, res.Invites, 1)
	assert.Equal(t, "An", *res.Invites[0].Name)
	assert.Nil(t, res.Invites[0].Email)
	assert.Zero(t, res.EmailsSent+len(res.EmailErrors))
}

func TestCreateAnonymous(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	w := store.addWebinar("Intro", true)
	exp := time.Now().Add(24 * time.Hour).UTC()

	list, err := svc.CreateAnonymous(context.Background(), w.ID, 4, &exp)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for _, inv := range list {
		assert.Nil(t, inv.Name)
		assert.Nil(t, inv.Email)
		assert.Equal(t, exp, *inv.ExpiresAt)
		assert.Zero(t, inv.ViewCount)
	}
}

func TestCreate_CountsMetrics(t *testing.T) {
	store := newMemoryStore()
	w := store.addWebinar("Intro", true)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, webinarGetter{store}, &fakeDispatcher{}, nil, m, "https://hezo.be", 0, nil)

	_, err := svc.Create(context.Background(), w.ID, []models.Recipient{{Email: strPtr("a@x.be")}, {Email: strPtr("fail@x.be")}}, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InvitesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsDispatched.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsDispatched.WithLabelValues("failed")))
}

func TestList_DerivesStatusAndLink(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	on := store.addWebinar("On", true)
	off := store.addWebinar("Off", false)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	_, err := svc.Create(ctx, on.ID, []models.Recipient{{Name: strPtr("active")}}, nil, false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, on.ID, []models.Recipient{{Name: strPtr("expired")}}, &past, false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, off.ID, []models.Recipient{{Name: strPtr("disabled")}}, nil, false)
	require.NoError(t, err)

	items, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "disabled", *items[0].Name)
	assert.Equal(t, models.InviteStatusWebinarDisabled, items[0].Status)
	assert.Equal(t, "Off", items[0].WebinarTitle)
	assert.Equal(t, models.InviteStatusExpired, items[1].Status)
	assert.Equal(t, models.InviteStatusActive, items[2].Status)
	assert.Equal(t, "https://hezo.be/webinar/"+items[2].Token, items[2].Link)

	filtered, err := svc.List(ctx, &off.ID)
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
}

func TestMagicLink(t *testing.T) {
	assert.Equal(t, "https://hezo.be/webinar/abc", MagicLink("https://hezo.be", "abc"))
	assert.Equal(t, "https://hezo.be/webinar/abc", MagicLink("https://hezo.be/", "abc"))
}
