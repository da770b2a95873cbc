package placement

import (
	"context"
	"log/slog"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/skills"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// ListDrives returns the drives visible to actor. A recruiter without
// assignments sees an empty list.
func (s *Service) ListDrives(ctx context.Context, actor *types.Actor) (_ []types.Drive, err error) {
	defer apperr.Guard(&err)

	if actor == nil {
		return nil, apperr.Authorization("authentication required")
	}
	vis := access.VisibleDrives(actor)
	return s.store.ListDrives(ctx, store.DriveFilter{IDs: vis.IDs, Scoped: vis.Scoped()})
}

// GetDrive returns one drive if actor may see it.
func (s *Service) GetDrive(ctx context.Context, actor *types.Actor, driveID string) (_ *types.Drive, err error) {
	defer apperr.Guard(&err)

	if err := access.Authorize(actor, driveID, access.ActionView); err != nil {
		return nil, err
	}
	d, err := s.store.GetDrive(ctx, driveID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFound("Company drive not found")
	}
	return d, nil
}

// CreateDrive posts a new drive. Recruiter assignment is a separate step.
func (s *Service) CreateDrive(ctx context.Context, actor *types.Actor, req *types.CreateDriveRequest) (_ *types.Drive, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	d := &types.Drive{
		CompanyName:     req.CompanyName,
		JobRole:         req.JobRole,
		MinGPA:          req.MinGPA,
		AllowedBacklogs: req.AllowedBacklogs,
		RequiredSkills:  skills.Clean(req.RequiredSkills),
		DriveDate:       req.DriveDate,
		CreatedBy:       actor.ID,
		CreatedAt:       s.now().UTC(),
	}
	id, err := s.store.CreateDrive(ctx, d)
	if err != nil {
		return nil, err
	}
	d.ID = id

	s.logger.Info("drive created", slog.String("drive_id", id), slog.String("company", d.CompanyName))
	return d, nil
}

// UpdateDrive applies a partial update to a drive. TPO only.
func (s *Service) UpdateDrive(ctx context.Context, actor *types.Actor, driveID string, req *types.UpdateDriveRequest) (_ *types.Drive, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	u := store.DriveUpdate{
		CompanyName:     req.CompanyName,
		JobRole:         req.JobRole,
		MinGPA:          req.MinGPA,
		AllowedBacklogs: req.AllowedBacklogs,
		DriveDate:       req.DriveDate,
	}
	if req.RequiredSkills != nil {
		cleaned := skills.Clean(*req.RequiredSkills)
		u.RequiredSkills = &cleaned
	}

	ok, err := s.store.UpdateDrive(ctx, driveID, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Company drive not found")
	}
	return s.store.GetDrive(ctx, driveID)
}

// DeleteDrive removes a drive and takes it off every recruiter's assignments.
// Applications keep the drive id. TPO only.
//
// Deleting an already-deleted drive that is still assigned somewhere finishes
// the cleanup instead of failing with NotFound.
func (s *Service) DeleteDrive(ctx context.Context, actor *types.Actor, driveID string) (err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return err
	}
	deleted, err := s.store.DeleteDrive(ctx, driveID)
	if err != nil {
		return err
	}
	unassigned, err := s.store.UnassignDrive(ctx, driveID)
	if err != nil {
		if deleted {
			return apperr.Infrastructure(err, "drive deleted but recruiter assignments were not cleared; retry the delete")
		}
		return err
	}
	if !deleted && unassigned == 0 {
		return apperr.NotFound("Company drive not found")
	}
	s.logger.Info("drive deleted",
		slog.String("drive_id", driveID),
		slog.Int64("recruiters_unassigned", unassigned),
	)
	return nil
}

// AssignRecruiter scopes an existing recruiter to driveID and records them on the drive.
func (s *Service) AssignRecruiter(ctx context.Context, actor *types.Actor, driveID, recruiterID string) (err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return err
	}
	if recruiterID == "" {
		return apperr.Validation("recruiter_id is required")
	}

	drive, err := s.store.GetDrive(ctx, driveID)
	if err != nil {
		return err
	}
	if drive == nil {
		return apperr.NotFound("Company drive not found")
	}
	recruiter, err := s.store.GetActor(ctx, recruiterID)
	if err != nil {
		return err
	}
	if recruiter == nil || recruiter.Role != types.RoleRecruiter {
		return apperr.NotFound("Recruiter not found")
	}

	if _, err := s.store.AssignDrive(ctx, recruiter.ID, drive.ID); err != nil {
		return err
	}
	if _, err := s.store.SetDriveRecruiter(ctx, drive.ID, recruiter.ID); err != nil {
		return err
	}

	s.logger.Info("recruiter assigned",
		slog.String("drive_id", drive.ID),
		slog.String("recruiter_id", recruiter.ID),
	)
	return nil
}
