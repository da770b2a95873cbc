// Package workflow owns the application status lifecycle.
//
// Applications move strictly forward through a fixed table and stop at
// SELECTED or REJECTED. The machine only validates the transition the caller
// asks for; it never infers or skips a stage.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/metrics"
	"github.com/jonathan/campus-placement/internal/notify"
	"github.com/jonathan/campus-placement/internal/types"
)

var transitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.StatusApplied:     {types.StatusShortlisted, types.StatusRejected},
	types.StatusShortlisted: {types.StatusInterviewed, types.StatusRejected},
	types.StatusInterviewed: {types.StatusSelected, types.StatusRejected},
	types.StatusSelected:    nil,
	types.StatusRejected:    nil,
}

// IsValidTransition reports whether an application may move from current to next.
// Self transitions and unknown statuses are never valid.
func IsValidTransition(current, next types.ApplicationStatus) bool {
	return slices.Contains(transitions[current], next)
}

// AllowedNext returns the statuses reachable from current in one step.
func AllowedNext(current types.ApplicationStatus) []types.ApplicationStatus {
	return slices.Clone(transitions[current])
}

// Store is the persistence the machine needs.
type Store interface {
	GetApplication(ctx context.Context, id string) (*types.Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, from, to types.ApplicationStatus, at time.Time) (bool, error)
	GetDrive(ctx context.Context, id string) (*types.Drive, error)
	GetProfile(ctx context.Context, studentID string) (*types.StudentProfile, error)
	SetPlacementStatus(ctx context.Context, studentID string, from, to types.PlacementStatus) (bool, error)
}

// Machine applies status transitions and their side effects.
type Machine struct {
	store    Store
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithMetrics counts committed transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(mc *Machine) { mc.metrics = m }
}

// WithLogger sets the machine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(mc *Machine) { mc.logger = l }
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(mc *Machine) { mc.now = now }
}

// New creates a Machine.
func New(s Store, n notify.Notifier, opts ...Option) *Machine {
	m := &Machine{
		store:    s,
		notifier: n,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Transition moves applicationID to next on behalf of actor.
//
// Only the placement office and recruiters scoped to the application's drive
// may transition. The write is conditioned on the status that was read, so a
// concurrent transition that got there first surfaces as a conflict.
//
// Asking for SELECTED on an application that is already SELECTED retries the
// placement write when an earlier attempt left the profile unplaced; otherwise
// it is the usual invalid transition.
func (m *Machine) Transition(ctx context.Context, applicationID string, next types.ApplicationStatus, actor *types.Actor) (_ *types.Application, err error) {
	defer apperr.Guard(&err)

	if applicationID == "" {
		return nil, apperr.Validation("application id is required")
	}
	if !next.Valid() {
		return nil, apperr.Validation("unknown application status %q", next)
	}

	app, err := m.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperr.NotFound("application not found")
	}

	if err := access.RequireRole(actor, types.RoleTPO, types.RoleRecruiter); err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, app.CompanyID, access.ActionManage); err != nil {
		return nil, err
	}

	current := app.Status
	if current == types.StatusSelected && next == types.StatusSelected {
		repaired, err := m.repairPlacement(ctx, app)
		if err != nil {
			return nil, err
		}
		if repaired {
			return app, nil
		}
	}
	if !IsValidTransition(current, next) {
		return nil, apperr.Conflict("invalid transition from %s to %s", current, next)
	}

	at := m.now().UTC()
	ok, err := m.store.UpdateApplicationStatus(ctx, app.ID, current, next, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("application status changed concurrently; reload and retry")
	}
	app.Status = next
	app.UpdatedAt = at

	m.metrics.Transition(string(current), string(next))
	m.logger.Info("application status updated",
		slog.String("application_id", app.ID),
		slog.String("from", string(current)),
		slog.String("to", string(next)),
		slog.String("actor_id", actor.ID),
	)

	m.notifier.Notify(ctx, app.StudentID,
		fmt.Sprintf("Your application status for %s has been updated to %s", m.companyName(ctx, app.CompanyID), next),
		types.NotifyStatusUpdate,
	)

	if next == types.StatusSelected {
		if err := m.recordPlacement(ctx, app.StudentID); err != nil {
			return app, err
		}
	}

	return app, nil
}

func (m *Machine) recordPlacement(ctx context.Context, studentID string) error {
	if _, err := m.store.SetPlacementStatus(ctx, studentID, types.PlacementNotApplied, types.PlacementSelected); err != nil {
		return apperr.Infrastructure(err, "application selected but placement status was not recorded; retry the SELECTED update")
	}
	return nil
}

// repairPlacement records the placement for a SELECTED application whose
// profile was never marked. It reports false when there is nothing to repair.
func (m *Machine) repairPlacement(ctx context.Context, app *types.Application) (bool, error) {
	p, err := m.store.GetProfile(ctx, app.StudentID)
	if err != nil {
		return false, err
	}
	if p == nil || p.PlacementStatus == types.PlacementSelected {
		return false, nil
	}
	if err := m.recordPlacement(ctx, app.StudentID); err != nil {
		return false, err
	}
	m.logger.Info("placement status recovered",
		slog.String("application_id", app.ID),
		slog.String("student_id", app.StudentID),
	)
	return true, nil
}

// companyName is only used for the notification text, so lookup failures fall back to a generic name.
func (m *Machine) companyName(ctx context.Context, driveID string) string {
	d, err := m.store.GetDrive(ctx, driveID)
	if err != nil || d == nil || d.CompanyName == "" {
		return "a company"
	}
	return d.CompanyName
}
