package types

import "fmt"

// Role identifies what an actor is allowed to do in the placement workflow.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
	RoleTPO       Role = "tpo"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleRecruiter, RoleTPO:
		return true
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// AccountStatus is the approval state of an actor's account.
type AccountStatus string

const (
	AccountPending  AccountStatus = "pending_approval"
	AccountActive   AccountStatus = "active"
	AccountRejected AccountStatus = "rejected"
)

// Valid reports whether s is one of the known account statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountPending, AccountActive, AccountRejected:
		return true
	}
	return false
}

// ParseAccountStatus converts a raw string into an AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	st := AccountStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown account status %q", s)
	}
	return st, nil
}

// ApplicationStatus is the review stage of an application.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "APPLIED"
	StatusShortlisted ApplicationStatus = "SHORTLISTED"
	StatusInterviewed ApplicationStatus = "INTERVIEWED"
	StatusSelected    ApplicationStatus = "SELECTED"
	StatusRejected    ApplicationStatus = "REJECTED"
)

// ApplicationStatuses lists every status in lifecycle order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied,
	StatusShortlisted,
	StatusInterviewed,
	StatusSelected,
	StatusRejected,
}

// Valid reports whether s is one of the known application statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusShortlisted, StatusInterviewed, StatusSelected, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusSelected || s == StatusRejected
}

// ParseApplicationStatus converts a raw string into an ApplicationStatus.
// Matching is exact: statuses are upper case on the wire.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

// PlacementStatus records whether a student has been placed.
type PlacementStatus string

const (
	PlacementNotApplied PlacementStatus = "NOT_APPLIED"
	PlacementSelected   PlacementStatus = "SELECTED"
)

// Valid reports whether s is one of the known placement statuses.
func (s PlacementStatus) Valid() bool {
	return s == PlacementNotApplied || s == PlacementSelected
}

// ParsePlacementStatus converts a raw string into a PlacementStatus.
func ParsePlacementStatus(s string) (PlacementStatus, error) {
	st := PlacementStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown placement status %q", s)
	}
	return st, nil
}

// NotificationType classifies a notification by the event that produced it.
type NotificationType string

const (
	NotifyRegistration NotificationType = "registration"
	NotifyApproval     NotificationType = "approval"
	NotifyRejection    NotificationType = "rejection"
	NotifyApplication  NotificationType = "application"
	NotifyStatusUpdate NotificationType = "status_update"
	NotifyInterview    NotificationType = "interview"
)

// InterviewMode is how an interview is conducted.
type InterviewMode string

const (
	ModeOnline  InterviewMode = "online"
	ModeOffline InterviewMode = "offline"
)

// Valid reports whether m is a known interview mode.
func (m InterviewMode) Valid() bool {
	return m == ModeOnline || m == ModeOffline
}
