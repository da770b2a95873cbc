// Package notify records best-effort notifications for actors.
//
// Notify never fails its caller: a notification that cannot be written is
// logged, counted and dropped. Loss or duplication between the triggering
// write and the notification write is accepted.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/metrics"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

const (
	// DefaultLimit caps how many notifications List returns.
	DefaultLimit = 50

	writeTimeout  = 5 * time.Second
	subjectPrefix = "placement.notifications."
)

// Notifier is the side-effect interface used by the workflow.
type Notifier interface {
	Notify(ctx context.Context, userID, message string, kind types.NotificationType)
}

// Publisher fans notifications out to other processes. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Dispatcher writes notifications to the store and optionally publishes them.
type Dispatcher struct {
	store     store.NotificationStore
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

var _ Notifier = (*Dispatcher)(nil)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPublisher also publishes every recorded notification.
func WithPublisher(p Publisher) Option {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithMetrics counts dropped notifications.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger used for dropped notifications.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a dispatcher backed by s.
func New(s store.NotificationStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:  s,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify records a notification for userID. Failures are swallowed.
func (d *Dispatcher) Notify(ctx context.Context, userID, message string, kind types.NotificationType) {
	// The triggering write has already committed; a cancelled request must not drop the notification.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	n := &types.Notification{
		UserID:    userID,
		Message:   message,
		Type:      kind,
		Read:      false,
		CreatedAt: d.now().UTC(),
	}

	id, err := d.store.InsertNotification(ctx, n)
	if err != nil {
		d.drop(kind, userID, "store", err)
		return
	}
	n.ID = id

	if d.publisher == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		d.drop(kind, userID, "encode", err)
		return
	}
	if err := d.publisher.Publish(subjectPrefix+string(kind), data); err != nil {
		d.drop(kind, userID, "publish", err)
	}
}

func (d *Dispatcher) drop(kind types.NotificationType, userID, stage string, err error) {
	d.metrics.NotificationFailed(string(kind))
	d.logger.Warn("notification dropped",
		slog.String("type", string(kind)),
		slog.String("user_id", userID),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// Inbox is a page of notifications with the recipient's unread count.
type Inbox struct {
	Notifications []types.Notification `json:"notifications"`
	UnreadCount   int64                `json:"unread_count"`
}

// List returns the newest notifications for userID.
func (d *Dispatcher) List(ctx context.Context, userID string, limit int) (_ *Inbox, err error) {
	defer apperr.Guard(&err)

	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	list, err := d.store.ListNotifications(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := d.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Notifications: list, UnreadCount: unread}, nil
}

// MarkRead flips a notification to read. Only the recipient may do so.
func (d *Dispatcher) MarkRead(ctx context.Context, userID, notificationID string) (err error) {
	defer apperr.Guard(&err)

	ok, err := d.store.MarkNotificationRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("notification not found")
	}
	return nil
}
