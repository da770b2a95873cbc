// Package accounts handles registration, login and the placement office's
// account administration.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/config"
	"github.com/jonathan/campus-placement/internal/notify"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password. It is deliberately the same error for both.
var ErrInvalidCredentials = apperr.Authorization("Invalid email or password")

// Notification texts sent on account decisions.
const (
	approvalMessage  = "Your account has been approved! You can now log in."
	rejectionMessage = "Your account registration has been rejected. Contact the placement office for details."
)

// Service implements account operations.
type Service struct {
	store     store.Store
	passwords *config.PasswordConfig
	notifier  notify.Notifier
	logger    *slog.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service with the given dependencies.
func NewService(s store.Store, passwords *config.PasswordConfig, n notify.Notifier, opts ...Option) *Service {
	svc := &Service{
		store:     s,
		passwords: passwords,
		notifier:  n,
		logger:    slog.Default(),
		validate:  validator.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return apperr.Invalid(err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a student account awaiting approval, with an empty
// profile, and tells every placement officer about it. The student cannot
// log in until approved.
func (s *Service) Register(ctx context.Context, req *types.RegisterRequest) (_ *types.Actor, err error) {
	defer apperr.Guard(&err)

	if err := s.check(req); err != nil {
		return nil, err
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Validation("password cannot be used: %v", err)
	}

	now := s.now().UTC()
	actor := &types.Actor{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         types.RoleStudent,
		Status:       types.AccountPending,
		CreatedAt:    now,
	}
	id, err := s.store.CreateActor(ctx, actor)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Email already registered")
	}
	if err != nil {
		return nil, err
	}
	actor.ID = id

	profile := &types.StudentProfile{
		StudentID:       id,
		Name:            actor.Name,
		Department:      strings.TrimSpace(req.Department),
		RollNumber:      strings.TrimSpace(req.RollNumber),
		Skills:          []string{},
		PlacementStatus: types.PlacementNotApplied,
		CreatedAt:       now,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		s.undoRegistration(ctx, id)
		return nil, apperr.Infrastructure(err, "student profile could not be created")
	}

	s.logger.Info("student registered", slog.String("actor_id", id), slog.String("email", actor.Email))
	s.notifyOffice(ctx, fmt.Sprintf("New student registration awaiting approval: %s (%s)", actor.Name, actor.Email))

	return actor, nil
}

// undoRegistration removes an actor whose profile was never written so the
// email can register again.
func (s *Service) undoRegistration(ctx context.Context, id string) {
	if _, err := s.store.DeleteActor(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Error("could not remove actor after failed registration",
			slog.String("actor_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// notifyOffice sends message to every placement officer. Failing to list
// them only costs the notification.
func (s *Service) notifyOffice(ctx context.Context, message string) {
	officers, err := s.store.ListActors(ctx, store.ActorFilter{Role: types.RoleTPO})
	if err != nil {
		s.logger.Warn("could not list placement officers", slog.String("error", err.Error()))
		return
	}
	for _, o := range officers {
		s.notifier.Notify(ctx, o.ID, message, types.NotifyRegistration)
	}
}

// Login checks credentials and the account status.
func (s *Service) Login(ctx context.Context, req *types.LoginRequest) (_ *types.Actor, err error) {
	defer apperr.Guard(&err)

	if err := s.check(req); err != nil {
		return nil, err
	}

	actor, err := s.store.GetActorByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if actor == nil || !s.passwords.VerifyPassword(req.Password, actor.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	switch actor.Status {
	case types.AccountActive:
		return actor, nil
	case types.AccountPending:
		return nil, apperr.Authorization("Your account is pending TPO approval")
	case types.AccountRejected:
		return nil, apperr.Authorization("Your account has been rejected. Contact the placement office.")
	}
	return nil, apperr.Authorization("account status %q does not allow login", actor.Status)
}

// Me returns the account behind an authenticated identity.
func (s *Service) Me(ctx context.Context, actorID string) (_ *types.Actor, err error) {
	defer apperr.Guard(&err)

	actor, err := s.store.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperr.NotFound("User not found")
	}
	return actor, nil
}
