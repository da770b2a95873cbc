// Package types provides the domain records and request shapes shared by the placement engine.
package types

import (
	"slices"
	"time"
)

// Actor is an authenticated participant: a student, a recruiter or the placement office.
type Actor struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	PasswordHash   string        `json:"-"`
	Role           Role          `json:"role"`
	Status         AccountStatus `json:"status"`
	AssignedDrives []string      `json:"assigned_drives,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// IsActive reports whether the actor may use the system.
func (a *Actor) IsActive() bool {
	return a != nil && a.Status == AccountActive
}

// HasDrive reports whether driveID is in the actor's assigned drives.
func (a *Actor) HasDrive(driveID string) bool {
	return a != nil && slices.Contains(a.AssignedDrives, driveID)
}

// StudentProfile holds the academic record used for eligibility and ranking.
type StudentProfile struct {
	StudentID       string          `json:"id"`
	Name            string          `json:"name"`
	Department      string          `json:"department"`
	RollNumber      string          `json:"roll_number"`
	GPA             float64         `json:"gpa"`
	Backlogs        int             `json:"backlogs"`
	Skills          []string        `json:"skills"`
	GitHub          string          `json:"github,omitempty"`
	LinkedIn        string          `json:"linkedin,omitempty"`
	Portfolio       string          `json:"portfolio,omitempty"`
	PlacementStatus PlacementStatus `json:"placement_status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Drive is a company's recruitment posting with its eligibility thresholds.
type Drive struct {
	ID              string    `json:"id"`
	CompanyName     string    `json:"company_name"`
	JobRole         string    `json:"role"`
	MinGPA          float64   `json:"min_gpa"`
	AllowedBacklogs int       `json:"allowed_backlogs"`
	RequiredSkills  []string  `json:"required_skills"`
	DriveDate       string    `json:"drive_date,omitempty"`
	RecruiterID     string    `json:"recruiter_id,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// Application is a student's candidacy for one drive.
type Application struct {
	ID        string            `json:"id"`
	StudentID string            `json:"student_id"`
	CompanyID string            `json:"company_id"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Notification is an append-only message addressed to one actor.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// Interview is a scheduled interview between a student and a drive.
type Interview struct {
	ID        string        `json:"id"`
	StudentID string        `json:"student_id"`
	CompanyID string        `json:"company_id"`
	Date      string        `json:"interview_date"`
	Time      string        `json:"interview_time,omitempty"`
	Mode      InterviewMode `json:"mode"`
	CreatedBy string        `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
}
