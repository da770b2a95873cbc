// Package memstore is an in-memory store.Store used by tests and local development.
//
// It enforces the same uniqueness and compare-and-swap semantics as the
// persistent backends so that engine behaviour does not depend on the backend.
package memstore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/campus-placement/internal/store"
	"github.com/jonathan/campus-placement/internal/types"
)

// Store keeps every collection in maps guarded by a single mutex.
type Store struct {
	mu sync.RWMutex

	actors        map[string]types.Actor
	emails        map[string]string // lower(email) -> actor id
	profiles      map[string]types.StudentProfile
	drives        map[string]types.Drive
	applications  map[string]types.Application
	appPairs      map[string]string // student|company -> application id
	interviews    map[string]types.Interview
	notifications map[string]types.Notification

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		actors:        make(map[string]types.Actor),
		emails:        make(map[string]string),
		profiles:      make(map[string]types.StudentProfile),
		drives:        make(map[string]types.Drive),
		applications:  make(map[string]types.Application),
		appPairs:      make(map[string]string),
		interviews:    make(map[string]types.Interview),
		notifications: make(map[string]types.Notification),
		now:           time.Now,
	}
}

// Migrate is a no-op; maps need no schema.
func (s *Store) Migrate(context.Context) error { return nil }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", store.ErrMalformedID, id)
	}
	return nil
}

func newID() string {
	return uuid.New().String()
}

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now().UTC()
	}
	return t
}

// --- actors ---

func (s *Store) CreateActor(_ context.Context, a *types.Actor) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(a.Email)
	if _, taken := s.emails[key]; taken {
		return "", fmt.Errorf("failed to create actor %s: %w", a.Email, store.ErrDuplicate)
	}

	rec := *a
	rec.ID = newID()
	rec.AssignedDrives = slices.Clone(a.AssignedDrives)
	rec.CreatedAt = s.stamp(a.CreatedAt)
	s.actors[rec.ID] = rec
	s.emails[key] = rec.ID
	return rec.ID, nil
}

func (s *Store) GetActor(_ context.Context, id string) (*types.Actor, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.actors[id]
	if !ok {
		return nil, nil
	}
	return cloneActor(a), nil
}

func (s *Store) GetActorByEmail(_ context.Context, email string) (*types.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return cloneActor(s.actors[id]), nil
}

func (s *Store) ListActors(_ context.Context, f store.ActorFilter) ([]types.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Actor, 0)
	for _, a := range s.actors {
		if matchActor(a, f) {
			out = append(out, *cloneActor(a))
		}
	}
	slices.SortFunc(out, func(x, y types.Actor) int {
		return cmp.Or(x.CreatedAt.Compare(y.CreatedAt), cmp.Compare(x.ID, y.ID))
	})
	return out, nil
}

func (s *Store) CountActors(_ context.Context, f store.ActorFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.actors {
		if matchActor(a, f) {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateActorStatus(_ context.Context, id string, from, to types.AccountStatus) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actors[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	s.actors[id] = a
	return true, nil
}

func (s *Store) AssignDrive(_ context.Context, actorID, driveID string) (bool, error) {
	if err := checkID(actorID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actors[actorID]
	if !ok {
		return false, nil
	}
	if !slices.Contains(a.AssignedDrives, driveID) {
		a.AssignedDrives = append(slices.Clone(a.AssignedDrives), driveID)
		s.actors[actorID] = a
	}
	return true, nil
}

func (s *Store) UnassignDrive(_ context.Context, driveID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, a := range s.actors {
		if !slices.Contains(a.AssignedDrives, driveID) {
			continue
		}
		a.AssignedDrives = slices.DeleteFunc(slices.Clone(a.AssignedDrives), func(d string) bool { return d == driveID })
		s.actors[id] = a
		n++
	}
	return n, nil
}

func (s *Store) DeleteActor(_ context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actors[id]
	if !ok {
		return false, nil
	}
	delete(s.actors, id)
	delete(s.emails, strings.ToLower(a.Email))
	delete(s.profiles, id)
	return true, nil
}

func matchActor(a types.Actor, f store.ActorFilter) bool {
	if f.Role != "" && a.Role != f.Role {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

func cloneActor(a types.Actor) *types.Actor {
	a.AssignedDrives = slices.Clone(a.AssignedDrives)
	return &a
}

// --- student profiles ---

func (s *Store) CreateProfile(_ context.Context, p *types.StudentProfile) error {
	if err := checkID(p.StudentID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.StudentID]; exists {
		return fmt.Errorf("failed to create profile for %s: %w", p.StudentID, store.ErrDuplicate)
	}
	rec := *p
	rec.Skills = slices.Clone(p.Skills)
	rec.CreatedAt = s.stamp(p.CreatedAt)
	if rec.PlacementStatus == "" {
		rec.PlacementStatus = types.PlacementNotApplied
	}
	s.profiles[rec.StudentID] = rec
	return nil
}

func (s *Store) GetProfile(_ context.Context, studentID string) (*types.StudentProfile, error) {
	if err := checkID(studentID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[studentID]
	if !ok {
		return nil, nil
	}
	return cloneProfile(p), nil
}

func (s *Store) UpdateProfile(_ context.Context, studentID string, u store.ProfileUpdate) (bool, error) {
	if err := checkID(studentID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[studentID]
	if !ok {
		return false, nil
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Department != nil {
		p.Department = *u.Department
	}
	if u.GPA != nil {
		p.GPA = *u.GPA
	}
	if u.Backlogs != nil {
		p.Backlogs = *u.Backlogs
	}
	if u.Skills != nil {
		p.Skills = slices.Clone(*u.Skills)
	}
	if u.GitHub != nil {
		p.GitHub = *u.GitHub
	}
	if u.LinkedIn != nil {
		p.LinkedIn = *u.LinkedIn
	}
	if u.Portfolio != nil {
		p.Portfolio = *u.Portfolio
	}
	s.profiles[studentID] = p
	return true, nil
}

func (s *Store) ListProfiles(_ context.Context, f store.ProfileFilter) ([]types.StudentProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.StudentProfile, 0)
	for _, p := range s.profiles {
		if matchProfile(p, f) {
			out = append(out, *cloneProfile(p))
		}
	}
	slices.SortFunc(out, func(x, y types.StudentProfile) int {
		return cmp.Or(x.CreatedAt.Compare(y.CreatedAt), cmp.Compare(x.StudentID, y.StudentID))
	})
	return out, nil
}

func (s *Store) CountProfiles(_ context.Context, f store.ProfileFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.profiles {
		if matchProfile(p, f) {
			n++
		}
	}
	return n, nil
}

func (s *Store) SetPlacementStatus(_ context.Context, studentID string, from, to types.PlacementStatus) (bool, error) {
	if err := checkID(studentID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[studentID]
	if !ok || p.PlacementStatus != from {
		return false, nil
	}
	p.PlacementStatus = to
	s.profiles[studentID] = p
	return true, nil
}

func (s *Store) CountByDepartment(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64)
	for _, p := range s.profiles {
		out[p.Department]++
	}
	return out, nil
}

func matchProfile(p types.StudentProfile, f store.ProfileFilter) bool {
	if f.MinGPA != nil && p.GPA < *f.MinGPA {
		return false
	}
	if f.MaxBacklogs != nil && p.Backlogs > *f.MaxBacklogs {
		return false
	}
	if f.PlacementStatus != "" && p.PlacementStatus != f.PlacementStatus {
		return false
	}
	return true
}

func cloneProfile(p types.StudentProfile) *types.StudentProfile {
	p.Skills = slices.Clone(p.Skills)
	return &p
}

// --- drives ---

func (s *Store) CreateDrive(_ context.Context, d *types.Drive) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *d
	rec.ID = newID()
	rec.RequiredSkills = slices.Clone(d.RequiredSkills)
	rec.CreatedAt = s.stamp(d.CreatedAt)
	s.drives[rec.ID] = rec
	return rec.ID, nil
}

func (s *Store) GetDrive(_ context.Context, id string) (*types.Drive, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drives[id]
	if !ok {
		return nil, nil
	}
	return cloneDrive(d), nil
}

func (s *Store) UpdateDrive(_ context.Context, id string, u store.DriveUpdate) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drives[id]
	if !ok {
		return false, nil
	}
	if u.CompanyName != nil {
		d.CompanyName = *u.CompanyName
	}
	if u.JobRole != nil {
		d.JobRole = *u.JobRole
	}
	if u.MinGPA != nil {
		d.MinGPA = *u.MinGPA
	}
	if u.AllowedBacklogs != nil {
		d.AllowedBacklogs = *u.AllowedBacklogs
	}
	if u.RequiredSkills != nil {
		d.RequiredSkills = slices.Clone(*u.RequiredSkills)
	}
	if u.DriveDate != nil {
		d.DriveDate = *u.DriveDate
	}
	s.drives[id] = d
	return true, nil
}

func (s *Store) DeleteDrive(_ context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drives[id]; !ok {
		return false, nil
	}
	delete(s.drives, id)
	return true, nil
}

func (s *Store) SetDriveRecruiter(_ context.Context, driveID, recruiterID string) (bool, error) {
	if err := checkID(driveID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drives[driveID]
	if !ok {
		return false, nil
	}
	d.RecruiterID = recruiterID
	s.drives[driveID] = d
	return true, nil
}

func (s *Store) ListDrives(_ context.Context, f store.DriveFilter) ([]types.Drive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Drive, 0)
	for _, d := range s.drives {
		if f.Scoped && !slices.Contains(f.IDs, d.ID) {
			continue
		}
		if f.EligibleGPA != nil && d.MinGPA > *f.EligibleGPA {
			continue
		}
		if f.EligibleBacklogs != nil && d.AllowedBacklogs < *f.EligibleBacklogs {
			continue
		}
		out = append(out, *cloneDrive(d))
	}
	slices.SortFunc(out, func(x, y types.Drive) int {
		return cmp.Or(y.CreatedAt.Compare(x.CreatedAt), cmp.Compare(x.ID, y.ID))
	})
	return out, nil
}

func (s *Store) CountDrives(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.drives)), nil
}

func cloneDrive(d types.Drive) *types.Drive {
	d.RequiredSkills = slices.Clone(d.RequiredSkills)
	return &d
}

// --- applications ---

func pairKey(studentID, companyID string) string {
	return studentID + "|" + companyID
}

func (s *Store) InsertApplication(_ context.Context, a *types.Application) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(a.StudentID, a.CompanyID)
	if _, exists := s.appPairs[key]; exists {
		return "", fmt.Errorf("failed to insert application: %w", store.ErrDuplicate)
	}
	rec := *a
	rec.ID = newID()
	rec.AppliedAt = s.stamp(a.AppliedAt)
	rec.UpdatedAt = s.stamp(a.UpdatedAt)
	s.applications[rec.ID] = rec
	s.appPairs[key] = rec.ID
	return rec.ID, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*types.Application, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.applications[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) UpdateApplicationStatus(_ context.Context, id string, from, to types.ApplicationStatus, at time.Time) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.applications[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = at
	s.applications[id] = a
	return true, nil
}

func (s *Store) ListApplications(_ context.Context, f store.ApplicationFilter) ([]types.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Application, 0)
	for _, a := range s.applications {
		if matchApplication(a, f) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(x, y types.Application) int {
		return cmp.Or(y.AppliedAt.Compare(x.AppliedAt), cmp.Compare(x.ID, y.ID))
	})
	return out, nil
}

func (s *Store) CountApplications(_ context.Context, f store.ApplicationFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, a := range s.applications {
		if matchApplication(a, f) {
			n++
		}
	}
	return n, nil
}

func matchApplication(a types.Application, f store.ApplicationFilter) bool {
	if f.StudentID != "" && a.StudentID != f.StudentID {
		return false
	}
	if f.CompanyID != "" && a.CompanyID != f.CompanyID {
		return false
	}
	if f.Scoped && !slices.Contains(f.CompanyIDs, a.CompanyID) {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}

// --- interviews ---

func (s *Store) InsertInterview(_ context.Context, iv *types.Interview) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *iv
	rec.ID = newID()
	rec.CreatedAt = s.stamp(iv.CreatedAt)
	s.interviews[rec.ID] = rec
	return rec.ID, nil
}

func (s *Store) ListInterviews(_ context.Context, f store.InterviewFilter) ([]types.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Interview, 0)
	for _, iv := range s.interviews {
		if f.StudentID != "" && iv.StudentID != f.StudentID {
			continue
		}
		if f.CompanyID != "" && iv.CompanyID != f.CompanyID {
			continue
		}
		if f.Scoped && !slices.Contains(f.CompanyIDs, iv.CompanyID) {
			continue
		}
		out = append(out, iv)
	}
	slices.SortFunc(out, func(x, y types.Interview) int {
		return cmp.Or(cmp.Compare(x.Date, y.Date), cmp.Compare(x.Time, y.Time), cmp.Compare(x.ID, y.ID))
	})
	return out, nil
}

// --- notifications ---

func (s *Store) InsertNotification(_ context.Context, n *types.Notification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *n
	rec.ID = newID()
	rec.CreatedAt = s.stamp(n.CreatedAt)
	s.notifications[rec.ID] = rec
	return rec.ID, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]types.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(x, y types.Notification) int {
		return cmp.Or(y.CreatedAt.Compare(x.CreatedAt), cmp.Compare(y.ID, x.ID))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, rec := range s.notifications {
		if rec.UserID == userID && !rec.Read {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, userID string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	n.Read = true
	s.notifications[id] = n
	return true, nil
}
