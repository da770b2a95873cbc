package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/config"
	"github.com/jonathan/campus-placement/internal/memstore"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sent struct {
	userID  string
	message string
	kind    types.NotificationType
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingNotifier) Notify(_ context.Context, userID, message string, kind types.NotificationType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{userID, message, kind})
}

func (r *recordingNotifier) to(userID string) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sent
	for _, s := range r.sent {
		if s.userID == userID {
			out = append(out, s)
		}
	}
	return out
}

type fixture struct {
	ctx      context.Context
	store    *memstore.Store
	notifier *recordingNotifier
	svc      *Service
	tpo      *types.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	n := &recordingNotifier{}
	f := &fixture{
		ctx:      ctx,
		store:    s,
		notifier: n,
		svc:      NewService(s, &config.PasswordConfig{BcryptCost: bcrypt.MinCost}, n),
	}

	tpo, created, err := f.svc.SeedTPO(ctx, "Placement Office", "TPO@uni.edu", "office-pass")
	require.NoError(t, err)
	require.True(t, created)
	f.tpo = tpo
	return f
}

func (f *fixture) register(t *testing.T, email string) *types.Actor {
	t.Helper()
	a, err := f.svc.Register(f.ctx, &types.RegisterRequest{
		Name: "Ada Lovelace", Email: email, Password: "analytical", Department: "CSE", RollNumber: "CS-001",
	})
	require.NoError(t, err)
	return a
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	a := f.register(t, "Ada@Uni.edu")
	assert.Equal(t, types.RoleStudent, a.Role)
	assert.Equal(t, types.AccountPending, a.Status)
	assert.Equal(t, "ada@uni.edu", a.Email)
	assert.NotEqual(t, "analytical", a.PasswordHash)

	p, err := f.store.GetProfile(f.ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "CSE", p.Department)
	assert.Equal(t, "CS-001", p.RollNumber)
	assert.Zero(t, p.GPA)
	assert.Equal(t, types.PlacementNotApplied, p.PlacementStatus)

	assert.Equal(t, []sent{{
		userID:  f.tpo.ID,
		message: "New student registration awaiting approval: Ada Lovelace (ada@uni.edu)",
		kind:    types.NotifyRegistration,
	}}, f.notifier.to(f.tpo.ID))
}

func TestRegister_Errors(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ada@uni.edu")

	_, err := f.svc.Register(f.ctx, &types.RegisterRequest{
		Name: "Ada", Email: "ADA@uni.edu", Password: "analytical", Department: "CSE", RollNumber: "CS-002",
	})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.Register(f.ctx, &types.RegisterRequest{Name: "Bob", Email: "bob@uni.edu", Password: "short"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// profileOutageStore fails profile inserts while down is set.
type profileOutageStore struct {
	*memstore.Store
	down *bool
}

func (s profileOutageStore) CreateProfile(ctx context.Context, p *types.StudentProfile) error {
	if *s.down {
		return errors.New("connection reset")
	}
	return s.Store.CreateProfile(ctx, p)
}

func TestRegister_ProfileFailureCanBeRetried(t *testing.T) {
	f := newFixture(t)
	down := true
	svc := NewService(profileOutageStore{Store: f.store, down: &down}, &config.PasswordConfig{BcryptCost: bcrypt.MinCost}, f.notifier)
	req := &types.RegisterRequest{
		Name: "Ada Lovelace", Email: "ada@uni.edu", Password: "analytical", Department: "CSE", RollNumber: "CS-001",
	}

	_, err := svc.Register(f.ctx, req)
	assert.Equal(t, apperr.KindInfrastructure, apperr.KindOf(err))

	leftover, err := f.store.GetActorByEmail(f.ctx, "ada@uni.edu")
	require.NoError(t, err)
	assert.Nil(t, leftover, "no actor without a profile")
	assert.Empty(t, f.notifier.to(f.tpo.ID))

	down = false
	a, err := svc.Register(f.ctx, req)
	require.NoError(t, err)

	p, err := f.store.GetProfile(f.ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "CS-001", p.RollNumber)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	student := f.register(t, "ada@uni.edu")
	login := &types.LoginRequest{Email: "ada@uni.edu", Password: "analytical"}

	_, err := f.svc.Login(f.ctx, login)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "pending TPO approval")

	_, err = f.svc.ApproveStudent(f.ctx, f.tpo, student.ID)
	require.NoError(t, err)

	got, err := f.svc.Login(f.ctx, login)
	require.NoError(t, err)
	assert.Equal(t, student.ID, got.ID)

	_, err = f.svc.Login(f.ctx, &types.LoginRequest{Email: "ada@uni.edu", Password: "wrong-password"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = f.svc.Login(f.ctx, &types.LoginRequest{Email: "nobody@uni.edu", Password: "analytical"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = f.svc.RejectStudent(f.ctx, f.tpo, student.ID)
	require.NoError(t, err)
	_, err = f.svc.Login(f.ctx, login)
	assert.Contains(t, err.Error(), "rejected")
}

func TestApproveStudent(t *testing.T) {
	f := newFixture(t)
	student := f.register(t, "ada@uni.edu")

	approved, err := f.svc.ApproveStudent(f.ctx, f.tpo, student.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AccountActive, approved.Status)
	assert.Equal(t, []sent{{student.ID, approvalMessage, types.NotifyApproval}}, f.notifier.to(student.ID))

	_, err = f.svc.ApproveStudent(f.ctx, f.tpo, student.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.ApproveStudent(f.ctx, student, student.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = f.svc.ApproveStudent(f.ctx, f.tpo, f.tpo.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.ApproveStudent(f.ctx, f.tpo, "8c1d7e55-0000-4000-8000-000000000000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRejectStudent(t *testing.T) {
	f := newFixture(t)
	student := f.register(t, "ada@uni.edu")

	rejected, err := f.svc.RejectStudent(f.ctx, f.tpo, student.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AccountRejected, rejected.Status)
	assert.Equal(t, []sent{{student.ID, rejectionMessage, types.NotifyRejection}}, f.notifier.to(student.ID))

	_, err = f.svc.RejectStudent(f.ctx, f.tpo, student.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestListPendingStudents(t *testing.T) {
	f := newFixture(t)
	first := f.register(t, "ada@uni.edu")
	second := f.register(t, "grace@uni.edu")
	_, err := f.svc.ApproveStudent(f.ctx, f.tpo, first.ID)
	require.NoError(t, err)

	pending, err := f.svc.ListPendingStudents(f.ctx, f.tpo)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, "CSE", pending[0].Department)
}

func TestCreateRecruiter(t *testing.T) {
	f := newFixture(t)
	driveID, err := f.store.CreateDrive(f.ctx, &types.Drive{CompanyName: "Acme"})
	require.NoError(t, err)

	r, err := f.svc.CreateRecruiter(f.ctx, f.tpo, &types.CreateRecruiterRequest{
		Name: "Hiring Manager", Email: "hr@acme.com", Password: "acme-hr", DriveID: driveID,
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleRecruiter, r.Role)
	assert.Equal(t, types.AccountActive, r.Status)
	assert.Equal(t, []string{driveID}, r.AssignedDrives)

	d, err := f.store.GetDrive(f.ctx, driveID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, d.RecruiterID)

	_, err = f.svc.Login(f.ctx, &types.LoginRequest{Email: "hr@acme.com", Password: "acme-hr"})
	assert.NoError(t, err)

	_, err = f.svc.CreateRecruiter(f.ctx, f.tpo, &types.CreateRecruiterRequest{Name: "Dup", Email: "HR@acme.com", Password: "acme-hr"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = f.svc.CreateRecruiter(f.ctx, f.tpo, &types.CreateRecruiterRequest{
		Name: "Ghost", Email: "ghost@acme.com", Password: "acme-hr", DriveID: "8c1d7e55-0000-4000-8000-000000000000",
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.CreateRecruiter(f.ctx, r, &types.CreateRecruiterRequest{Name: "X", Email: "x@acme.com", Password: "acme-hr"})
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	list, err := f.svc.ListRecruiters(f.ctx, f.tpo)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSeedTPO_Idempotent(t *testing.T) {
	f := newFixture(t)

	again, created, err := f.svc.SeedTPO(f.ctx, "Placement Office", "tpo@uni.edu", "office-pass")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, f.tpo.ID, again.ID)

	f.register(t, "ada@uni.edu")
	_, _, err = f.svc.SeedTPO(f.ctx, "Office", "ada@uni.edu", "office-pass")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, _, err = f.svc.SeedTPO(f.ctx, "Office", "", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMe(t *testing.T) {
	f := newFixture(t)

	me, err := f.svc.Me(f.ctx, f.tpo.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoleTPO, me.Role)

	_, err = f.svc.Me(f.ctx, "not-a-uuid")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
