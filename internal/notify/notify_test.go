package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/memstore"
	"github.com/jonathan/campus-placement/internal/metrics"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*memstore.Store
}

func (failingStore) InsertNotification(context.Context, *types.Notification) (string, error) {
	return "", errors.New("store unreachable")
}

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotify_RecordsUnread(t *testing.T) {
	s := memstore.New()
	d := New(s, WithLogger(quietLogger()))
	ctx := context.Background()

	d.Notify(ctx, "u1", "You have applied to Acme", types.NotifyApplication)

	inbox, err := d.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, inbox.Notifications, 1)
	assert.Equal(t, "You have applied to Acme", inbox.Notifications[0].Message)
	assert.Equal(t, types.NotifyApplication, inbox.Notifications[0].Type)
	assert.False(t, inbox.Notifications[0].Read)
	assert.Equal(t, int64(1), inbox.UnreadCount)
}

func TestNotify_SurvivesCancelledContext(t *testing.T) {
	s := memstore.New()
	d := New(s, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Notify(ctx, "u1", "late", types.NotifyStatusUpdate)

	n, err := s.CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNotify_StoreFailureIsSwallowed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	d := New(failingStore{memstore.New()}, WithMetrics(m), WithLogger(quietLogger()))

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), "u1", "msg", types.NotifyInterview)
	})

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "placement_notifications_failed_total" {
			found = true
			assert.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestNotify_Publishes(t *testing.T) {
	pub := &recordingPublisher{}
	d := New(memstore.New(), WithPublisher(pub), WithLogger(quietLogger()))

	d.Notify(context.Background(), "u1", "Interview scheduled", types.NotifyInterview)

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "placement.notifications.interview", pub.subjects[0])

	var n types.Notification
	require.NoError(t, json.Unmarshal(pub.payloads[0], &n))
	assert.Equal(t, "u1", n.UserID)
	assert.NotEmpty(t, n.ID)
}

func TestNotify_PublishFailureIsSwallowed(t *testing.T) {
	s := memstore.New()
	pub := &recordingPublisher{err: errors.New("no servers")}
	d := New(s, WithPublisher(pub), WithLogger(quietLogger()))

	d.Notify(context.Background(), "u1", "msg", types.NotifyApproval)

	n, err := s.CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "stored notification is kept when publish fails")
}

func TestMarkRead(t *testing.T) {
	s := memstore.New()
	d := New(s, WithLogger(quietLogger()))
	ctx := context.Background()

	d.Notify(ctx, "u1", "msg", types.NotifyApproval)
	inbox, err := d.List(ctx, "u1", 10)
	require.NoError(t, err)
	id := inbox.Notifications[0].ID

	err = d.MarkRead(ctx, "u2", id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = d.MarkRead(ctx, "u1", "garbage")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, d.MarkRead(ctx, "u1", id))
	inbox, err = d.List(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inbox.UnreadCount)
}
