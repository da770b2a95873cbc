// Package store defines the persistence contract of the placement engine.
//
// Backends (Postgres, MongoDB, in-memory) implement Store. Lookups return
// (nil, nil) when a record does not exist. Identifiers that are not well-formed
// for the backend fail with ErrMalformedID, and uniqueness violations fail with
// ErrDuplicate. Conditional updates report whether a record matched instead of
// failing, so callers can tell a lost race from a store failure.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/campus-placement/internal/types"
)

var (
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")

	// ErrMalformedID is returned when an identifier is not a valid key for the backend.
	ErrMalformedID = errors.New("malformed identifier")
)

// ActorFilter narrows actor listings. Zero values mean "any".
type ActorFilter struct {
	Role   types.Role
	Status types.AccountStatus
}

// ActorStore persists actors.
type ActorStore interface {
	CreateActor(ctx context.Context, a *types.Actor) (string, error)
	GetActor(ctx context.Context, id string) (*types.Actor, error)
	GetActorByEmail(ctx context.Context, email string) (*types.Actor, error)
	ListActors(ctx context.Context, f ActorFilter) ([]types.Actor, error)
	CountActors(ctx context.Context, f ActorFilter) (int64, error)
	// UpdateActorStatus sets the status only if it is currently from.
	UpdateActorStatus(ctx context.Context, id string, from, to types.AccountStatus) (bool, error)
	// AssignDrive appends driveID to a recruiter's assigned drives if not already present.
	AssignDrive(ctx context.Context, actorID, driveID string) (bool, error)
	// UnassignDrive removes driveID from every actor's assigned drives and
	// returns how many actors changed.
	UnassignDrive(ctx context.Context, driveID string) (int64, error)
	// DeleteActor removes an actor together with its student profile, if any.
	DeleteActor(ctx context.Context, id string) (bool, error)
}

// ProfileFilter narrows student profile listings. Nil pointers mean "any".
type ProfileFilter struct {
	MinGPA          *float64
	MaxBacklogs     *int
	PlacementStatus types.PlacementStatus
}

// ProfileUpdate is a partial profile update; nil fields are left untouched.
type ProfileUpdate struct {
	Name       *string
	Department *string
	GPA        *float64
	Backlogs   *int
	Skills     *[]string
	GitHub     *string
	LinkedIn   *string
	Portfolio  *string
}

// ProfileStore persists student profiles, keyed by the owning actor's id.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *types.StudentProfile) error
	GetProfile(ctx context.Context, studentID string) (*types.StudentProfile, error)
	UpdateProfile(ctx context.Context, studentID string, u ProfileUpdate) (bool, error)
	ListProfiles(ctx context.Context, f ProfileFilter) ([]types.StudentProfile, error)
	CountProfiles(ctx context.Context, f ProfileFilter) (int64, error)
	// SetPlacementStatus sets the placement status only if it is currently from.
	SetPlacementStatus(ctx context.Context, studentID string, from, to types.PlacementStatus) (bool, error)
	// CountByDepartment groups profiles by department.
	CountByDepartment(ctx context.Context) (map[string]int64, error)
}

// DriveFilter narrows drive listings.
type DriveFilter struct {
	// IDs restricts the listing when Scoped is set. An empty IDs with Scoped
	// set yields no drives.
	IDs    []string
	Scoped bool
	// EligibleGPA keeps drives whose min_gpa is at most the value.
	EligibleGPA *float64
	// EligibleBacklogs keeps drives whose allowed_backlogs is at least the value.
	EligibleBacklogs *int
}

// DriveUpdate is a partial drive update; nil fields are left untouched.
type DriveUpdate struct {
	CompanyName     *string
	JobRole         *string
	MinGPA          *float64
	AllowedBacklogs *int
	RequiredSkills  *[]string
	DriveDate       *string
}

// DriveStore persists drives.
type DriveStore interface {
	CreateDrive(ctx context.Context, d *types.Drive) (string, error)
	GetDrive(ctx context.Context, id string) (*types.Drive, error)
	UpdateDrive(ctx context.Context, id string, u DriveUpdate) (bool, error)
	DeleteDrive(ctx context.Context, id string) (bool, error)
	SetDriveRecruiter(ctx context.Context, driveID, recruiterID string) (bool, error)
	ListDrives(ctx context.Context, f DriveFilter) ([]types.Drive, error)
	CountDrives(ctx context.Context) (int64, error)
}

// ApplicationFilter narrows application listings. Empty strings mean "any".
type ApplicationFilter struct {
	StudentID string
	CompanyID string
	// CompanyIDs restricts the listing when Scoped is set.
	CompanyIDs []string
	Scoped     bool
	Status     types.ApplicationStatus
}

// ApplicationStore persists applications. At most one application may exist
// per (student, company) pair.
type ApplicationStore interface {
	InsertApplication(ctx context.Context, a *types.Application) (string, error)
	GetApplication(ctx context.Context, id string) (*types.Application, error)
	// UpdateApplicationStatus sets status and updated_at only if the status is currently from.
	UpdateApplicationStatus(ctx context.Context, id string, from, to types.ApplicationStatus, at time.Time) (bool, error)
	ListApplications(ctx context.Context, f ApplicationFilter) ([]types.Application, error)
	CountApplications(ctx context.Context, f ApplicationFilter) (int64, error)
}

// InterviewFilter narrows interview listings. Empty strings mean "any".
type InterviewFilter struct {
	StudentID  string
	CompanyID  string
	CompanyIDs []string
	Scoped     bool
}

// InterviewStore persists interviews.
type InterviewStore interface {
	InsertInterview(ctx context.Context, iv *types.Interview) (string, error)
	ListInterviews(ctx context.Context, f InterviewFilter) ([]types.Interview, error)
}

// NotificationStore persists notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *types.Notification) (string, error)
	// ListNotifications returns the newest notifications first.
	ListNotifications(ctx context.Context, userID string, limit int) ([]types.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkNotificationRead flips read for a notification owned by userID.
	MarkNotificationRead(ctx context.Context, id, userID string) (bool, error)
}

// Store is the full persistence surface handed to the services at startup.
type Store interface {
	ActorStore
	ProfileStore
	DriveStore
	ApplicationStore
	InterviewStore
	NotificationStore

	// Migrate creates the collections/tables and indexes the engine relies on.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}
