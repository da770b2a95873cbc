package placement

import (
	"context"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/eligibility"
	"github.com/jonathan/campus-placement/internal/ranking"
	"github.com/jonathan/campus-placement/internal/types"
)

// ListEligibleDrives returns the drives a student qualifies for.
// Students may only ask about themselves; the placement office must name the student.
func (s *Service) ListEligibleDrives(ctx context.Context, actor *types.Actor, studentID string) (_ []eligibility.EligibleDrive, err error) {
	defer apperr.Guard(&err)

	p, err := s.subjectProfile(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	return s.matcher.EligibleDrivesFor(ctx, p)
}

// ListEligibleStudents returns the active students eligible for driveID.
// Scope is checked before the drive is read so out-of-scope callers learn nothing about it.
func (s *Service) ListEligibleStudents(ctx context.Context, actor *types.Actor, driveID string) (_ []types.StudentProfile, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO, types.RoleRecruiter); err != nil {
		return nil, err
	}
	if driveID == "" {
		return nil, apperr.Validation("company id is required")
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
	return s.matcher.EligibleStudentsFor(ctx, drive)
}

// Recommend ranks the drives a student is eligible for, best first.
func (s *Service) Recommend(ctx context.Context, actor *types.Actor, studentID string) (_ []ranking.Recommendation, err error) {
	defer apperr.Guard(&err)

	p, err := s.subjectProfile(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	return s.ranker.Recommend(ctx, p)
}

// subjectProfile resolves whose profile a student-facing query is about.
func (s *Service) subjectProfile(ctx context.Context, actor *types.Actor, studentID string) (*types.StudentProfile, error) {
	if err := access.RequireRole(actor, types.RoleStudent, types.RoleTPO); err != nil {
		return nil, err
	}

	switch actor.Role {
	case types.RoleStudent:
		if studentID != "" && studentID != actor.ID {
			return nil, apperr.Authorization("students may only query their own profile")
		}
		studentID = actor.ID
	case types.RoleTPO:
		if studentID == "" {
			return nil, apperr.Validation("student_id is required")
		}
	}

	p, err := s.store.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Student profile not found")
	}
	return p, nil
}
