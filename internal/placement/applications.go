package placement

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// SubmitApplication records actor's application to driveID.
//
// Applying is not gated on eligibility. The store's (student, drive)
// uniqueness decides duplicates, so two concurrent submissions produce
// exactly one application.
func (s *Service) SubmitApplication(ctx context.Context, actor *types.Actor, driveID string) (_ *types.Application, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleStudent); err != nil {
		return nil, err
	}
	if driveID == "" {
		return nil, apperr.Validation("company_id is required")
	}

	drive, err := s.store.GetDrive(ctx, driveID)
	if err != nil {
		return nil, err
	}
	if drive == nil {
		return nil, apperr.NotFound("Company drive not found")
	}

	now := s.now().UTC()
	app := &types.Application{
		StudentID: actor.ID,
		CompanyID: drive.ID,
		Status:    types.StatusApplied,
		AppliedAt: now,
		UpdatedAt: now,
	}
	id, err := s.store.InsertApplication(ctx, app)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Already applied to this drive")
	}
	if err != nil {
		return nil, err
	}
	app.ID = id

	s.metrics.ApplicationSubmitted()
	s.logger.Info("application submitted",
		slog.String("application_id", id),
		slog.String("student_id", actor.ID),
		slog.String("drive_id", drive.ID),
	)
	s.notifier.Notify(ctx, actor.ID, "You have applied to "+drive.CompanyName, types.NotifyApplication)

	return app, nil
}

// UpdateApplicationStatus moves an application to status on behalf of actor.
func (s *Service) UpdateApplicationStatus(ctx context.Context, actor *types.Actor, applicationID, status string) (_ *types.Application, err error) {
	defer apperr.Guard(&err)

	next, err := types.ParseApplicationStatus(status)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	return s.machine.Transition(ctx, applicationID, next, actor)
}

// ListMyApplications returns the student's own applications with their drives.
func (s *Service) ListMyApplications(ctx context.Context, actor *types.Actor) (_ []ApplicationView, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleStudent); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplications(ctx, store.ApplicationFilter{StudentID: actor.ID})
	if err != nil {
		return nil, err
	}
	return s.viewApplications(ctx, apps, true, false)
}

// ListApplications returns every application, optionally narrowed by status. TPO only.
func (s *Service) ListApplications(ctx context.Context, actor *types.Actor, status string) (_ []ApplicationView, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	f := store.ApplicationFilter{}
	if status != "" {
		st, err := types.ParseApplicationStatus(status)
		if err != nil {
			return nil, apperr.Validation("%v", err)
		}
		f.Status = st
	}
	apps, err := s.store.ListApplications(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.viewApplications(ctx, apps, true, true)
}

// ListDriveApplications returns the applications to driveID with applicant profiles.
func (s *Service) ListDriveApplications(ctx context.Context, actor *types.Actor, driveID string) (_ []ApplicationView, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO, types.RoleRecruiter); err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, driveID, access.ActionView); err != nil {
		return nil, err
	}
	drive, err := s.store.GetDrive(ctx, driveID)
	if err != nil {
		return nil, err
	}
	if drive == nil {
		return nil, apperr.NotFound("Company drive not found")
	}

	apps, err := s.store.ListApplications(ctx, store.ApplicationFilter{CompanyID: drive.ID})
	if err != nil {
		return nil, err
	}
	return s.viewApplications(ctx, apps, false, true)
}

func (s *Service) viewApplications(ctx context.Context, apps []types.Application, withCompany, withStudent bool) ([]ApplicationView, error) {
	l := newLookup(s.store)
	out := make([]ApplicationView, 0, len(apps))
	for _, a := range apps {
		v := ApplicationView{Application: a}
		if withCompany {
			d, err := l.drive(ctx, a.CompanyID)
			if err != nil {
				return nil, err
			}
			v.Company = d
		}
		if withStudent {
			p, err := l.profile(ctx, a.StudentID)
			if err != nil {
				return nil, err
			}
			v.Student = p
		}
		out = append(out, v)
	}
	return out, nil
}
