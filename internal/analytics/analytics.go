// Package analytics computes placement statistics for the placement office.
package analytics

import (
	"cmp"
	"context"
	"slices"

	"github.com/jonathan/campus-placement/internal/access"
	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
	"golang.org/x/sync/errgroup"
)

// unknownDepartment labels profiles with no department.
const unknownDepartment = "Unknown"

// DepartmentCount is the number of students in one department.
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// Report is a snapshot of placement statistics.
type Report struct {
	TotalStudents       int64                             `json:"total_students"`
	TotalCompanies      int64                             `json:"total_companies"`
	TotalApplications   int64                             `json:"total_applications"`
	PlacedStudents      int64                             `json:"placed_students"`
	PlacementPercentage float64                           `json:"placement_percentage"`
	StatusDistribution  map[types.ApplicationStatus]int64 `json:"status_distribution"`
	DepartmentStats     []DepartmentCount                 `json:"department_stats"`
}

// Store is the persistence the report reads.
type Store interface {
	CountProfiles(ctx context.Context, f store.ProfileFilter) (int64, error)
	CountDrives(ctx context.Context) (int64, error)
	CountApplications(ctx context.Context, f store.ApplicationFilter) (int64, error)
	CountByDepartment(ctx context.Context) (map[string]int64, error)
}

// Service builds reports.
type Service struct {
	store Store
}

// New creates a Service.
func New(s Store) *Service {
	return &Service{store: s}
}

// Report gathers every statistic concurrently. A student counts as placed
// once their placement status is SELECTED, so a student with several
// selections is counted once.
func (s *Service) Report(ctx context.Context, actor *types.Actor) (_ *Report, err error) {
	defer apperr.Guard(&err)

	if err := access.RequireRole(actor, types.RoleTPO); err != nil {
		return nil, err
	}

	var (
		r        Report
		byStatus = make([]int64, len(types.ApplicationStatuses))
		byDept   map[string]int64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.TotalStudents, err = s.store.CountProfiles(gCtx, store.ProfileFilter{})
		return err
	})
	g.Go(func() (err error) {
		r.PlacedStudents, err = s.store.CountProfiles(gCtx, store.ProfileFilter{PlacementStatus: types.PlacementSelected})
		return err
	})
	g.Go(func() (err error) {
		r.TotalCompanies, err = s.store.CountDrives(gCtx)
		return err
	})
	g.Go(func() (err error) {
		r.TotalApplications, err = s.store.CountApplications(gCtx, store.ApplicationFilter{})
		return err
	})
	for i, st := range types.ApplicationStatuses {
		g.Go(func() (err error) {
			byStatus[i], err = s.store.CountApplications(gCtx, store.ApplicationFilter{Status: st})
			return err
		})
	}
	g.Go(func() (err error) {
		byDept, err = s.store.CountByDepartment(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if r.TotalStudents > 0 {
		r.PlacementPercentage = float64(r.PlacedStudents) / float64(r.TotalStudents) * 100
	}
	r.StatusDistribution = make(map[types.ApplicationStatus]int64, len(byStatus))
	for i, st := range types.ApplicationStatuses {
		r.StatusDistribution[st] = byStatus[i]
	}
	r.DepartmentStats = departmentStats(byDept)

	return &r, nil
}

// departmentStats orders departments by size, largest first, then by name.
// Blank departments are merged under unknownDepartment.
func departmentStats(counts map[string]int64) []DepartmentCount {
	merged := make(map[string]int64, len(counts))
	for dept, n := range counts {
		if dept == "" {
			dept = unknownDepartment
		}
		merged[dept] += n
	}

	out := make([]DepartmentCount, 0, len(merged))
	for dept, n := range merged {
		out = append(out, DepartmentCount{Department: dept, Count: n})
	}
	slices.SortFunc(out, func(a, b DepartmentCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Department, b.Department))
	})
	return out
}
