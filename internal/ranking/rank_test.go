package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/eligibility"
	"github.com/jonathan/campus-placement/internal/memstore"
	"github.com/jonathan/campus-placement/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drive(id string, minGPA float64, skills ...string) eligibility.EligibleDrive {
	return eligibility.EligibleDrive{Drive: types.Drive{ID: id, CompanyName: id, MinGPA: minGPA, RequiredSkills: skills}}
}

func TestRank_SortedDescending(t *testing.T) {
	student := &types.StudentProfile{GPA: 8.0, Skills: []string{"Go"}}
	drives := []eligibility.EligibleDrive{
		drive("a", 7.9, "Rust"),
		drive("b", 6.0, "Go"),
		drive("c", 7.0),
		drive("d", 8.0, "Go", "Rust"),
	}

	ranked := Rank(student, drives)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Total, ranked[i].Total)
	}
	assert.Equal(t, "b", ranked[0].ID)
	assert.InDelta(t, 100, ranked[0].Total, 1e-9)
}

func TestRank_TiesBrokenByDriveID(t *testing.T) {
	student := &types.StudentProfile{GPA: 8.0}
	drives := []eligibility.EligibleDrive{drive("z", 7.0), drive("m", 7.0), drive("a", 7.0)}

	ranked := Rank(student, drives)
	ids := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
	assert.Equal(t, []string{"a", "m", "z"}, ids)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(&types.StudentProfile{GPA: 9}, nil))
}

func TestRank_CarriesAppliedFlagAndNotes(t *testing.T) {
	d := drive("a", 7.0, "Go", "SQL")
	d.AlreadyApplied = true

	ranked := Rank(&types.StudentProfile{GPA: 7.0, Skills: []string{"sql"}}, []eligibility.EligibleDrive{d})
	require.Len(t, ranked, 1)
	assert.True(t, ranked[0].AlreadyApplied)
	assert.Equal(t, "GPA at the cutoff; matched 1 of 2 required skills (SQL)", ranked[0].Notes)
}

func TestRecommend_ScenarioTwoStudents(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	ranker := NewRanker(eligibility.NewMatcher(s))

	_, err := s.CreateDrive(ctx, &types.Drive{CompanyName: "Acme", MinGPA: 7.0, RequiredSkills: []string{"Go", "SQL"}})
	require.NoError(t, err)

	top := &types.StudentProfile{StudentID: "4f7b3a52-9f7e-4c38-8a7a-0d3b5d6e7f01", GPA: 9.0, Skills: []string{"go", "sql"}}
	atCutoff := &types.StudentProfile{StudentID: "4f7b3a52-9f7e-4c38-8a7a-0d3b5d6e7f02", GPA: 7.0, Skills: []string{"Go", "SQL"}}

	got, err := ranker.Recommend(ctx, top)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 100, got[0].Total, 1e-9)

	got, err = ranker.Recommend(ctx, atCutoff)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 80, got[0].Total, 1e-9)
}

type failingSource struct{}

func (failingSource) EligibleDrivesFor(context.Context, *types.StudentProfile) ([]eligibility.EligibleDrive, error) {
	return nil, errors.New("pool exhausted")
}

func TestRecommend_PropagatesInfrastructureError(t *testing.T) {
	_, err := NewRanker(failingSource{}).Recommend(context.Background(), &types.StudentProfile{})
	assert.True(t, apperr.Is(err, apperr.KindInfrastructure))
}
