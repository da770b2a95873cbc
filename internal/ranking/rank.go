package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/eligibility"
	"github.com/jonathan/campus-placement/internal/skills"
	"github.com/jonathan/campus-placement/internal/types"
)

// Recommendation is an eligible drive with its score.
type Recommendation struct {
	eligibility.EligibleDrive
	Breakdown
	Notes string `json:"notes"`
}

// DriveSource lists the drives a student is eligible for.
type DriveSource interface {
	EligibleDrivesFor(ctx context.Context, p *types.StudentProfile) ([]eligibility.EligibleDrive, error)
}

// Ranker produces recommendations over a student's eligible drives.
type Ranker struct {
	drives DriveSource
}

// NewRanker creates a Ranker.
func NewRanker(src DriveSource) *Ranker {
	return &Ranker{drives: src}
}

// Recommend returns p's eligible drives ordered by score, best first.
func (r *Ranker) Recommend(ctx context.Context, p *types.StudentProfile) (_ []Recommendation, err error) {
	defer apperr.Guard(&err)

	drives, err := r.drives.EligibleDrivesFor(ctx, p)
	if err != nil {
		return nil, err
	}
	return Rank(p, drives), nil
}

// Rank scores drives for p and sorts them by score descending. Equal scores
// are ordered by drive id so the result is deterministic.
func Rank(p *types.StudentProfile, drives []eligibility.EligibleDrive) []Recommendation {
	ranked := make([]Recommendation, 0, len(drives))
	for _, d := range drives {
		b := Score(p, &d.Drive)
		ranked = append(ranked, Recommendation{
			EligibleDrive: d,
			Breakdown:     b,
			Notes:         generateNotes(b, len(skills.Set(d.RequiredSkills))),
		})
	}

	slices.SortStableFunc(ranked, func(a, b Recommendation) int {
		return cmp.Or(cmp.Compare(b.Total, a.Total), cmp.Compare(a.ID, b.ID))
	})
	return ranked
}

// generateNotes creates a brief explanation of the score.
func generateNotes(b Breakdown, required int) string {
	var parts []string

	switch {
	case b.GPAScore >= gpaBase+gpaMarginCap:
		parts = append(parts, "GPA well above the cutoff")
	case b.GPAScore > gpaBase:
		parts = append(parts, "GPA above the cutoff")
	case b.GPAScore == gpaBase:
		parts = append(parts, "GPA at the cutoff")
	default:
		parts = append(parts, "GPA below the cutoff")
	}

	switch {
	case required == 0:
		parts = append(parts, "no specific skills required")
	case len(b.MatchedSkills) == 0:
		parts = append(parts, "no required skills matched")
	default:
		parts = append(parts, fmt.Sprintf("matched %d of %d required skills (%s)",
			len(b.MatchedSkills), required, strings.Join(b.MatchedSkills, ", ")))
	}

	return strings.Join(parts, "; ")
}
