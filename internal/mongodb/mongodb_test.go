package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestStore(t *testing.T) *Store {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := Connect(ctx, uri, "placement_test_"+primitive.NewObjectID().Hex())
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to MongoDB: %v", err)
	}
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		s.Close()
	})
	return s
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = parseID("8c1d7e55-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, store.ErrMalformedID)
}

func TestCompanyScope(t *testing.T) {
	tests := []struct {
		name      string
		companyID string
		ids       []string
		scoped    bool
		want      bson.M
	}{
		{"none", "", nil, false, bson.M{}},
		{"single", "a", nil, false, bson.M{"company_id": "a"}},
		{"scoped", "", []string{"a", "b"}, true, bson.M{"company_id": bson.M{"$in": []string{"a", "b"}}}},
		{"both", "a", []string{"b"}, true, bson.M{"$and": bson.A{
			bson.M{"company_id": "a"},
			bson.M{"company_id": bson.M{"$in": []string{"b"}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := bson.M{}
			companyScope(filter, tt.companyID, tt.ids, tt.scoped)
			assert.Equal(t, tt.want, filter)
		})
	}
}

func TestActorDoc_RoundTrip(t *testing.T) {
	created := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	doc := newActorDoc(&types.Actor{Name: "Ada", Email: "Ada@Uni.edu", Role: types.RoleStudent, Status: types.AccountPending}, created)
	assert.Equal(t, "ada@uni.edu", doc.EmailLower)
	assert.NotNil(t, doc.AssignedDrives)

	a := doc.record()
	assert.Equal(t, doc.ID.Hex(), a.ID)
	assert.Equal(t, "Ada@Uni.edu", a.Email)
	assert.Nil(t, a.AssignedDrives)
	assert.Equal(t, created, a.CreatedAt)
}

func TestStore_ActorsAndProfiles(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.CreateActor(ctx, &types.Actor{Name: "Ada", Email: "Ada@uni.edu", Role: types.RoleStudent, Status: types.AccountPending})
	require.NoError(t, err)

	_, err = s.CreateActor(ctx, &types.Actor{Email: "ada@UNI.edu", Role: types.RoleStudent, Status: types.AccountPending})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := s.GetActorByEmail(ctx, "ADA@uni.edu")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)

	ok, err := s.UpdateActorStatus(ctx, id, types.AccountPending, types.AccountActive)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.UpdateActorStatus(ctx, id, types.AccountPending, types.AccountActive)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.CreateProfile(ctx, &types.StudentProfile{StudentID: id, Department: "CSE", GPA: 7.5}))
	assert.ErrorIs(t, s.CreateProfile(ctx, &types.StudentProfile{StudentID: id}), store.ErrDuplicate)

	ok, err = s.UpdateProfile(ctx, id, store.ProfileUpdate{})
	require.NoError(t, err)
	assert.True(t, ok, "an empty update still reports existence")

	skills := []string{"go"}
	ok, err = s.UpdateProfile(ctx, id, store.ProfileUpdate{Skills: &skills})
	require.NoError(t, err)
	assert.True(t, ok)

	p, err := s.GetProfile(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"go"}, p.Skills)
	assert.Equal(t, 7.5, p.GPA)

	byDept, err := s.CountByDepartment(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"CSE": 1}, byDept)

	ok, err = s.DeleteActor(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	p, err = s.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, p)
	_, err = s.CreateActor(ctx, &types.Actor{Email: "ada@uni.edu", Role: types.RoleStudent, Status: types.AccountPending})
	assert.NoError(t, err, "email is free again")
}

func TestStore_ApplicationsAreUnique(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	drive, err := s.CreateDrive(ctx, &types.Drive{CompanyName: "Acme", MinGPA: 7})
	require.NoError(t, err)
	student := primitive.NewObjectID().Hex()

	id, err := s.InsertApplication(ctx, &types.Application{StudentID: student, CompanyID: drive, Status: types.StatusApplied})
	require.NoError(t, err)
	_, err = s.InsertApplication(ctx, &types.Application{StudentID: student, CompanyID: drive, Status: types.StatusApplied})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	ok, err := s.UpdateApplicationStatus(ctx, id, types.StatusApplied, types.StatusShortlisted, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	scoped, err := s.ListApplications(ctx, store.ApplicationFilter{CompanyIDs: []string{drive}, Scoped: true})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, types.StatusShortlisted, scoped[0].Status)

	none, err := s.ListApplications(ctx, store.ApplicationFilter{Scoped: true})
	require.NoError(t, err)
	assert.Empty(t, none)

	gpa := 6.5
	eligible, err := s.ListDrives(ctx, store.DriveFilter{EligibleGPA: &gpa})
	require.NoError(t, err)
	assert.Empty(t, eligible)
}
