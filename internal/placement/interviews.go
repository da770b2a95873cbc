package placement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// ScheduleInterview books an interview for a student on a drive the actor manages.
func (s *Service) ScheduleInterview(ctx context.Context, actor *types.Actor, req *types.ScheduleInterviewRequest) (_ *types.Interview, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO, types.RoleRecruiter); err != nil {
		return nil, apperr.Authorization("Only TPO or recruiter can schedule interviews")
	}
	if req == nil || req.StudentID == "" || req.CompanyID == "" || req.InterviewDate == "" {
		return nil, apperr.Validation("student_id, company_id, and interview_date are required")
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	mode := types.InterviewMode(req.Mode)
	if mode == "" {
		mode = types.ModeOnline
	}

	if err := access.Authorize(actor, req.CompanyID, access.ActionManage); err != nil {
		return nil, apperr.Authorization("Access denied to this drive")
	}

	drive, err := s.store.GetDrive(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if drive == nil {
		return nil, apperr.NotFound("Company drive not found")
	}
	student, err := s.store.GetProfile(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperr.NotFound("Student profile not found")
	}

	iv := &types.Interview{
		StudentID: student.StudentID,
		CompanyID: drive.ID,
		Date:      req.InterviewDate,
		Time:      req.InterviewTime,
		Mode:      mode,
		CreatedBy: actor.ID,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.store.InsertInterview(ctx, iv)
	if err != nil {
		return nil, err
	}
	iv.ID = id

	s.logger.Info("interview scheduled",
		slog.String("interview_id", id),
		slog.String("drive_id", drive.ID),
		slog.String("student_id", student.StudentID),
	)
	s.notifier.Notify(ctx, student.StudentID,
		fmt.Sprintf("Interview scheduled with %s on %s (%s)", drive.CompanyName, iv.Date, iv.Mode),
		types.NotifyInterview,
	)
	return iv, nil
}

// ListInterviews returns interviews on drives visible to actor, optionally for one drive.
func (s *Service) ListInterviews(ctx context.Context, actor *types.Actor, driveID string) (_ []InterviewView, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO, types.RoleRecruiter); err != nil {
		return nil, err
	}
	vis := access.VisibleDrives(actor)
	ivs, err := s.store.ListInterviews(ctx, store.InterviewFilter{
		CompanyID:  driveID,
		CompanyIDs: vis.IDs,
		Scoped:     vis.Scoped(),
	})
	if err != nil {
		return nil, err
	}
	return s.viewInterviews(ctx, ivs, true)
}

// ListMyInterviews returns the student's own interviews.
func (s *Service) ListMyInterviews(ctx context.Context, actor *types.Actor) (_ []InterviewView, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleStudent); err != nil {
		return nil, err
	}
	ivs, err := s.store.ListInterviews(ctx, store.InterviewFilter{StudentID: actor.ID})
	if err != nil {
		return nil, err
	}
	return s.viewInterviews(ctx, ivs, false)
}

func (s *Service) viewInterviews(ctx context.Context, ivs []types.Interview, withStudent bool) ([]InterviewView, error) {
	l := newLookup(s.store)
	out := make([]InterviewView, 0, len(ivs))
	for _, iv := range ivs {
		v := InterviewView{Interview: iv}
		d, err := l.drive(ctx, iv.CompanyID)
		if err != nil {
			return nil, err
		}
		v.Company = d
		if withStudent {
			p, err := l.profile(ctx, iv.StudentID)
			if err != nil {
				return nil, err
			}
			v.Student = p
		}
		out = append(out, v)
	}
	return out, nil
}
