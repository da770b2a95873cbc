// Package placement exposes the placement engine's operations to the API layer.
//
// Every method takes the acting identity explicitly and returns errors
// classified by apperr. Role and drive scope are checked here before any
// state changes; the workflow, eligibility and ranking packages do the rest.
package placement

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/eligibility"
	"github.com/jonathan/campus-placement/internal/metrics"
	"github.com/jonathan/campus-placement/internal/notify"
	"github.com/jonathan/campus-placement/internal/ranking"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/jonathan/campus-placement/internal/workflow"
)

// Service implements the placement operations over a store.
type Service struct {
	store    store.Store
	matcher  *eligibility.Matcher
	ranker   *ranking.Ranker
	machine  *workflow.Machine
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records submissions and transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New wires a Service. Notifications go through n.
func New(s store.Store, n notify.Notifier, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		notifier: n,
		logger:   slog.Default(),
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.matcher = eligibility.NewMatcher(s)
	svc.ranker = ranking.NewRanker(svc.matcher)
	svc.machine = workflow.New(s, n,
		workflow.WithMetrics(svc.metrics),
		workflow.WithLogger(svc.logger),
		workflow.WithClock(svc.now),
	)
	return svc
}

func (s *Service) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return apperr.Invalid(err)
	}
	return nil
}

// ApplicationView is an application with the drive and student it refers to.
type ApplicationView struct {
	types.Application
	Company *types.Drive          `json:"company,omitempty"`
	Student *types.StudentProfile `json:"student,omitempty"`
}

// InterviewView is an interview with its drive and student.
type InterviewView struct {
	types.Interview
	Company *types.Drive          `json:"company,omitempty"`
	Student *types.StudentProfile `json:"student,omitempty"`
}

// lookup memoises drive and profile reads while a listing is assembled.
type lookup struct {
	store    store.Store
	drives   map[string]*types.Drive
	profiles map[string]*types.StudentProfile
}

func newLookup(s store.Store) *lookup {
	return &lookup{
		store:    s,
		drives:   make(map[string]*types.Drive),
		profiles: make(map[string]*types.StudentProfile),
	}
}

func (l *lookup) drive(ctx context.Context, id string) (*types.Drive, error) {
	if d, ok := l.drives[id]; ok {
		return d, nil
	}
	d, err := l.store.GetDrive(ctx, id)
	if err != nil {
		return nil, err
	}
	l.drives[id] = d
	return d, nil
}

func (l *lookup) profile(ctx context.Context, id string) (*types.StudentProfile, error) {
	if p, ok := l.profiles[id]; ok {
		return p, nil
	}
	p, err := l.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	l.profiles[id] = p
	return p, nil
}
