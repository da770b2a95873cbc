package placement

import (
	"context"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/skills"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// GetProfile returns the student's own profile.
func (s *Service) GetProfile(ctx context.Context, actor *types.Actor) (_ *types.StudentProfile, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleStudent); err != nil {
		return nil, err
	}
	p, err := s.store.GetProfile(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Student profile not found")
	}
	return p, nil
}

// UpdateProfile applies a partial update to the student's own profile.
func (s *Service) UpdateProfile(ctx context.Context, actor *types.Actor, req *types.UpdateProfileRequest) (_ *types.StudentProfile, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	u := store.ProfileUpdate{
		Name:       req.Name,
		Department: req.Department,
		GPA:        req.GPA,
		Backlogs:   req.Backlogs,
		GitHub:     req.GitHub,
		LinkedIn:   req.LinkedIn,
		Portfolio:  req.Portfolio,
	}
	if req.Skills != nil {
		cleaned := skills.Clean(*req.Skills)
		u.Skills = &cleaned
	}

	ok, err := s.store.UpdateProfile(ctx, actor.ID, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("Student profile not found")
	}
	return s.store.GetProfile(ctx, actor.ID)
}

// ListStudents returns every student profile. TPO only.
func (s *Service) ListStudents(ctx context.Context, actor *types.Actor) (_ []types.StudentProfile, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	return s.store.ListProfiles(ctx, store.ProfileFilter{})
}
