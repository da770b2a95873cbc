// Package eligibility matches students to drives by GPA and backlog thresholds.
//
// Both directions use the single predicate Eligible. Store-side threshold
// filters only narrow the candidate set; every candidate is re-checked in
// memory so that "drive D is eligible for S" and "S is eligible for D" can
// never disagree, whatever the backend's numeric semantics.
package eligibility

import (
	"context"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// Eligible reports whether p meets d's thresholds: GPA at or above the
// minimum and backlogs at or below the allowance.
func Eligible(p *types.StudentProfile, d *types.Drive) bool {
	return p.GPA >= d.MinGPA && p.Backlogs <= d.AllowedBacklogs
}

// EligibleDrive is a drive annotated with whether the student already applied.
type EligibleDrive struct {
	types.Drive
	AlreadyApplied bool `json:"already_applied"`
}

// Store is the persistence the matcher reads.
type Store interface {
	ListDrives(ctx context.Context, f store.DriveFilter) ([]types.Drive, error)
	ListProfiles(ctx context.Context, f store.ProfileFilter) ([]types.StudentProfile, error)
	ListApplications(ctx context.Context, f store.ApplicationFilter) ([]types.Application, error)
	ListActors(ctx context.Context, f store.ActorFilter) ([]types.Actor, error)
}

// Matcher answers eligibility queries in both directions.
type Matcher struct {
	store Store
}

// NewMatcher creates a Matcher.
func NewMatcher(s Store) *Matcher {
	return &Matcher{store: s}
}

// EligibleDrivesFor returns every drive p is eligible for, marking the ones p already applied to.
func (m *Matcher) EligibleDrivesFor(ctx context.Context, p *types.StudentProfile) (_ []EligibleDrive, err error) {
	defer apperr.Guard(&err)

	gpa, backlogs := p.GPA, p.Backlogs
	drives, err := m.store.ListDrives(ctx, store.DriveFilter{EligibleGPA: &gpa, EligibleBacklogs: &backlogs})
	if err != nil {
		return nil, err
	}

	apps, err := m.store.ListApplications(ctx, store.ApplicationFilter{StudentID: p.StudentID})
	if err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(apps))
	for _, a := range apps {
		applied[a.CompanyID] = true
	}

	out := make([]EligibleDrive, 0, len(drives))
	for i := range drives {
		if !Eligible(p, &drives[i]) {
			continue
		}
		out = append(out, EligibleDrive{Drive: drives[i], AlreadyApplied: applied[drives[i].ID]})
	}
	return out, nil
}

// EligibleStudentsFor returns the profiles of active students eligible for d.
func (m *Matcher) EligibleStudentsFor(ctx context.Context, d *types.Drive) (_ []types.StudentProfile, err error) {
	defer apperr.Guard(&err)

	minGPA, maxBacklogs := d.MinGPA, d.AllowedBacklogs
	profiles, err := m.store.ListProfiles(ctx, store.ProfileFilter{MinGPA: &minGPA, MaxBacklogs: &maxBacklogs})
	if err != nil {
		return nil, err
	}

	actives, err := m.store.ListActors(ctx, store.ActorFilter{Role: types.RoleStudent, Status: types.AccountActive})
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool, len(actives))
	for _, a := range actives {
		active[a.ID] = true
	}

	out := make([]types.StudentProfile, 0, len(profiles))
	for i := range profiles {
		if !active[profiles[i].StudentID] || !Eligible(&profiles[i], d) {
			continue
		}
		out = append(out, profiles[i])
	}
	return out, nil
}
