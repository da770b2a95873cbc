package placement

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/memstore"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func driveIDs(drives []types.Drive) []string {
	ids := make([]string, 0, len(drives))
	for _, d := range drives {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestListDrives_Visibility(t *testing.T) {
	f := newFixture(t)

	all, err := f.svc.ListDrives(f.ctx, f.tpo)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.acme.ID, f.globex.ID}, driveIDs(all))

	studentView, err := f.svc.ListDrives(f.ctx, f.student)
	require.NoError(t, err)
	assert.Len(t, studentView, 2)

	scoped, err := f.svc.ListDrives(f.ctx, f.recruiter)
	require.NoError(t, err)
	assert.Equal(t, []string{f.acme.ID}, driveIDs(scoped))

	idle := f.actor(t, "idle@corp.com", types.RoleRecruiter)
	none, err := f.svc.ListDrives(f.ctx, idle)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetDrive_RecruiterScope(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.GetDrive(f.ctx, f.recruiter, f.acme.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", d.CompanyName)

	_, err = f.svc.GetDrive(f.ctx, f.recruiter, f.globex.ID)
	assertKind(t, err, apperr.KindAuthorization)
}

func TestCreateDrive(t *testing.T) {
	f := newFixture(t)

	req := &types.CreateDriveRequest{
		CompanyName:    "Hooli",
		JobRole:        "SRE",
		MinGPA:         6.5,
		RequiredSkills: []string{"Linux", " linux ", "Go"},
	}
	d, err := f.svc.CreateDrive(f.ctx, f.tpo, req)
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, []string{"Linux", "Go"}, d.RequiredSkills)
	assert.Equal(t, f.tpo.ID, d.CreatedBy)

	_, err = f.svc.CreateDrive(f.ctx, f.recruiter, req)
	assertKind(t, err, apperr.KindAuthorization)

	_, err = f.svc.CreateDrive(f.ctx, f.tpo, &types.CreateDriveRequest{JobRole: "SRE"})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.svc.CreateDrive(f.ctx, f.tpo, &types.CreateDriveRequest{CompanyName: "X", JobRole: "Y", MinGPA: 11})
	assertKind(t, err, apperr.KindValidation)
}

func TestUpdateAndDeleteDrive(t *testing.T) {
	f := newFixture(t)

	gpa := 7.5
	d, err := f.svc.UpdateDrive(f.ctx, f.tpo, f.acme.ID, &types.UpdateDriveRequest{MinGPA: &gpa})
	require.NoError(t, err)
	assert.InDelta(t, 7.5, d.MinGPA, 1e-9)
	assert.Equal(t, "Acme", d.CompanyName)

	_, err = f.svc.UpdateDrive(f.ctx, f.recruiter, f.acme.ID, &types.UpdateDriveRequest{MinGPA: &gpa})
	assertKind(t, err, apperr.KindAuthorization)

	require.NoError(t, f.svc.DeleteDrive(f.ctx, f.tpo, f.globex.ID))
	assertKind(t, f.svc.DeleteDrive(f.ctx, f.tpo, f.globex.ID), apperr.KindNotFound)

	_, err = f.svc.UpdateDrive(f.ctx, f.tpo, f.globex.ID, &types.UpdateDriveRequest{MinGPA: &gpa})
	assertKind(t, err, apperr.KindNotFound)
}

// stuckAssignmentStore fails to clear recruiter assignments while down is set.
type stuckAssignmentStore struct {
	*memstore.Store
	down *bool
}

func (s stuckAssignmentStore) UnassignDrive(ctx context.Context, driveID string) (int64, error) {
	if *s.down {
		return 0, errors.New("connection reset")
	}
	return s.Store.UnassignDrive(ctx, driveID)
}

func TestDeleteDrive_ClearsRecruiterAssignments(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.AssignRecruiter(f.ctx, f.tpo, f.globex.ID, f.recruiter.ID))

	down := true
	svc := New(stuckAssignmentStore{Store: f.store, down: &down}, f.notifier)

	assertKind(t, svc.DeleteDrive(f.ctx, f.tpo, f.globex.ID), apperr.KindInfrastructure)
	d, err := f.store.GetDrive(f.ctx, f.globex.ID)
	require.NoError(t, err)
	assert.Nil(t, d)

	down = false
	require.NoError(t, svc.DeleteDrive(f.ctx, f.tpo, f.globex.ID), "retry finishes the cleanup")

	for _, a := range []*types.Actor{f.recruiter, f.outsider} {
		got, err := f.store.GetActor(f.ctx, a.ID)
		require.NoError(t, err)
		assert.NotContains(t, got.AssignedDrives, f.globex.ID)
	}
	rec, err := f.store.GetActor(f.ctx, f.recruiter.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.acme.ID}, rec.AssignedDrives)

	assertKind(t, svc.DeleteDrive(f.ctx, f.tpo, f.globex.ID), apperr.KindNotFound)
}

func TestAssignRecruiter(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.AssignRecruiter(f.ctx, f.tpo, f.globex.ID, f.recruiter.ID))

	updated, err := f.store.GetActor(f.ctx, f.recruiter.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.acme.ID, f.globex.ID}, updated.AssignedDrives)

	d, err := f.store.GetDrive(f.ctx, f.globex.ID)
	require.NoError(t, err)
	assert.Equal(t, f.recruiter.ID, d.RecruiterID)

	assertKind(t, f.svc.AssignRecruiter(f.ctx, f.tpo, f.globex.ID, f.student.ID), apperr.KindNotFound)
	assertKind(t, f.svc.AssignRecruiter(f.ctx, f.tpo, f.globex.ID, ""), apperr.KindValidation)
	assertKind(t, f.svc.AssignRecruiter(f.ctx, f.recruiter, f.globex.ID, f.recruiter.ID), apperr.KindAuthorization)
}

func TestListDriveApplications_Scope(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SubmitApplication(f.ctx, f.student, f.acme.ID)
	require.NoError(t, err)

	got, err := f.svc.ListDriveApplications(f.ctx, f.recruiter, f.acme.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Student)
	assert.Equal(t, f.student.ID, got[0].Student.StudentID)

	_, err = f.svc.ListDriveApplications(f.ctx, f.outsider, f.acme.ID)
	assertKind(t, err, apperr.KindAuthorization)
}

func TestListApplications(t *testing.T) {
	f := newFixture(t)
	app, err := f.svc.SubmitApplication(f.ctx, f.student, f.acme.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateApplicationStatus(f.ctx, f.tpo, app.ID, "REJECTED")
	require.NoError(t, err)

	mine, err := f.svc.ListMyApplications(f.ctx, f.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Company)
	assert.Equal(t, "Acme", mine[0].Company.CompanyName)

	rejected, err := f.svc.ListApplications(f.ctx, f.tpo, "REJECTED")
	require.NoError(t, err)
	assert.Len(t, rejected, 1)

	applied, err := f.svc.ListApplications(f.ctx, f.tpo, "APPLIED")
	require.NoError(t, err)
	assert.Empty(t, applied)

	_, err = f.svc.ListApplications(f.ctx, f.tpo, "pending")
	assertKind(t, err, apperr.KindValidation)

	_, err = f.svc.ListApplications(f.ctx, f.recruiter, "")
	assertKind(t, err, apperr.KindAuthorization)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.GetProfile(f.ctx, f.student)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, p.GPA, 1e-9)

	gpa, backlogs := 8.6, 1
	skills := []string{"Rust", "rust"}
	updated, err := f.svc.UpdateProfile(f.ctx, f.student, &types.UpdateProfileRequest{GPA: &gpa, Backlogs: &backlogs, Skills: &skills})
	require.NoError(t, err)
	assert.InDelta(t, 8.6, updated.GPA, 1e-9)
	assert.Equal(t, 1, updated.Backlogs)
	assert.Equal(t, []string{"Rust"}, updated.Skills)

	bad := "not a url"
	_, err = f.svc.UpdateProfile(f.ctx, f.student, &types.UpdateProfileRequest{GitHub: &bad})
	assertKind(t, err, apperr.KindValidation)

	_, err = f.svc.GetProfile(f.ctx, f.tpo)
	assertKind(t, err, apperr.KindAuthorization)

	all, err := f.svc.ListStudents(f.ctx, f.tpo)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
