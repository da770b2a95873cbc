package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// PendingStudent is a registration awaiting a decision.
type PendingStudent struct {
	types.Actor
	Department string `json:"department"`
	RollNumber string `json:"roll_number"`
}

// ListPendingStudents returns registrations awaiting approval, oldest first.
func (s *Service) ListPendingStudents(ctx context.Context, actor *types.Actor) (_ []PendingStudent, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	pending, err := s.store.ListActors(ctx, store.ActorFilter{Role: types.RoleStudent, Status: types.AccountPending})
	if err != nil {
		return nil, err
	}

	out := make([]PendingStudent, 0, len(pending))
	for _, a := range pending {
		ps := PendingStudent{Actor: a}
		p, err := s.store.GetProfile(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			ps.Department = p.Department
			ps.RollNumber = p.RollNumber
		}
		out = append(out, ps)
	}
	return out, nil
}

// ApproveStudent activates a pending student account.
func (s *Service) ApproveStudent(ctx context.Context, actor *types.Actor, studentID string) (_ *types.Actor, err error) {
	defer apperr.Guard(&err)

	student, err := s.loadStudent(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}

	ok, err := s.store.UpdateActorStatus(ctx, student.ID, types.AccountPending, types.AccountActive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("Student is not in pending state")
	}
	student.Status = types.AccountActive

	s.logger.Info("student approved", slog.String("student_id", student.ID), slog.String("actor_id", actor.ID))
	s.notifier.Notify(ctx, student.ID, approvalMessage, types.NotifyApproval)
	return student, nil
}

// RejectStudent rejects a pending registration or deactivates an active student.
func (s *Service) RejectStudent(ctx context.Context, actor *types.Actor, studentID string) (_ *types.Actor, err error) {
	defer apperr.Guard(&err)

	student, err := s.loadStudent(ctx, actor, studentID)
	if err != nil {
		return nil, err
	}
	if student.Status == types.AccountRejected {
		return nil, apperr.Conflict("Student is already rejected")
	}

	ok, err := s.store.UpdateActorStatus(ctx, student.ID, student.Status, types.AccountRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("student status changed concurrently; reload and retry")
	}
	student.Status = types.AccountRejected

	s.logger.Info("student rejected", slog.String("student_id", student.ID), slog.String("actor_id", actor.ID))
	s.notifier.Notify(ctx, student.ID, rejectionMessage, types.NotifyRejection)
	return student, nil
}

func (s *Service) loadStudent(ctx context.Context, actor *types.Actor, studentID string) (*types.Actor, error) {
	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	if studentID == "" {
		return nil, apperr.Validation("student id is required")
	}
	student, err := s.store.GetActor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperr.NotFound("User not found")
	}
	if student.Role != types.RoleStudent {
		return nil, apperr.Validation("Can only approve or reject student accounts")
	}
	return student, nil
}

// CreateRecruiter creates an active recruiter account. When req.DriveID is
// set the drive must exist and the recruiter is scoped to it.
func (s *Service) CreateRecruiter(ctx context.Context, actor *types.Actor, req *types.CreateRecruiterRequest) (_ *types.Actor, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	var drives []string
	if req.DriveID != "" {
		d, err := s.store.GetDrive(ctx, req.DriveID)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, apperr.NotFound("Company drive not found")
		}
		drives = []string{d.ID}
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Validation("password cannot be used: %v", err)
	}

	recruiter := &types.Actor{
		Name:           strings.TrimSpace(req.Name),
		Email:          normalizeEmail(req.Email),
		PasswordHash:   hash,
		Role:           types.RoleRecruiter,
		Status:         types.AccountActive,
		AssignedDrives: drives,
		CreatedAt:      s.now().UTC(),
	}
	id, err := s.store.CreateActor(ctx, recruiter)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("Recruiter email already registered")
	}
	if err != nil {
		return nil, err
	}
	recruiter.ID = id

	for _, driveID := range drives {
		if _, err := s.store.SetDriveRecruiter(ctx, driveID, id); err != nil {
			return nil, apperr.Infrastructure(err, "recruiter created but drive was not updated")
		}
	}

	s.logger.Info("recruiter created", slog.String("recruiter_id", id), slog.String("actor_id", actor.ID))
	return recruiter, nil
}

// ListRecruiters returns every recruiter account.
func (s *Service) ListRecruiters(ctx context.Context, actor *types.Actor) (_ []types.Actor, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}
	return s.store.ListActors(ctx, store.ActorFilter{Role: types.RoleRecruiter})
}

// SeedTPO creates the placement office account if no account uses email yet.
// It reports whether an account was created.
func (s *Service) SeedTPO(ctx context.Context, name, email, password string) (_ *types.Actor, created bool, err error) {
	defer apperr.Guard(&err)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, apperr.Validation("TPO email and password are required")
	}

	existing, err := s.store.GetActorByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.Role != types.RoleTPO {
			return nil, false, apperr.Conflict("email %s belongs to a %s account", email, existing.Role)
		}
		return existing, false, nil
	}

	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, false, apperr.Validation("password cannot be used: %v", err)
	}
	tpo := &types.Actor{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         types.RoleTPO,
		Status:       types.AccountActive,
		CreatedAt:    s.now().UTC(),
	}
	id, err := s.store.CreateActor(ctx, tpo)
	if err != nil {
		return nil, false, err
	}
	tpo.ID = id

	s.logger.Info("placement office account created", slog.String("actor_id", id), slog.String("email", email))
	return tpo, true, nil
}
