package types

// RegisterRequest is a student's self-registration.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=1"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Department string `json:"department" validate:"required"`
	RollNumber string `json:"roll_number" validate:"required"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login/register response with actor data and authentication token.
type LoginResponse struct {
	User  *Actor `json:"user"`
	Token string `json:"token"`
}

// CreateRecruiterRequest creates a recruiter account, optionally scoped to a drive straight away.
type CreateRecruiterRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	DriveID  string `json:"drive_id,omitempty"`
}

// CreateDriveRequest is a new drive posting. The recruiter fields are optional and are
// handled after the drive exists: either an existing recruiter is assigned or a new one created.
type CreateDriveRequest struct {
	CompanyName     string   `json:"company_name" validate:"required"`
	JobRole         string   `json:"role" validate:"required"`
	MinGPA          float64  `json:"min_gpa" validate:"gte=0,lte=10"`
	AllowedBacklogs int      `json:"allowed_backlogs" validate:"gte=0"`
	RequiredSkills  []string `json:"required_skills"`
	DriveDate       string   `json:"drive_date"`

	ExistingRecruiterID string `json:"existing_recruiter_id,omitempty"`
	RecruiterName       string `json:"recruiter_name,omitempty"`
	RecruiterEmail      string `json:"recruiter_email,omitempty" validate:"omitempty,email"`
	RecruiterPassword   string `json:"recruiter_password,omitempty" validate:"omitempty,min=6"`
}

// WantsNewRecruiter reports whether the request carries enough to create a recruiter account.
func (r *CreateDriveRequest) WantsNewRecruiter() bool {
	return r.RecruiterName != "" && r.RecruiterEmail != "" && r.RecruiterPassword != ""
}

// UpdateDriveRequest is a partial update; nil fields are left untouched.
type UpdateDriveRequest struct {
	CompanyName     *string   `json:"company_name,omitempty" validate:"omitempty,min=1"`
	JobRole         *string   `json:"role,omitempty" validate:"omitempty,min=1"`
	MinGPA          *float64  `json:"min_gpa,omitempty" validate:"omitempty,gte=0,lte=10"`
	AllowedBacklogs *int      `json:"allowed_backlogs,omitempty" validate:"omitempty,gte=0"`
	RequiredSkills  *[]string `json:"required_skills,omitempty"`
	DriveDate       *string   `json:"drive_date,omitempty"`
}

// UpdateProfileRequest is a student's partial profile update.
type UpdateProfileRequest struct {
	Name       *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	Department *string   `json:"department,omitempty"`
	GPA        *float64  `json:"gpa,omitempty" validate:"omitempty,gte=0,lte=10"`
	Backlogs   *int      `json:"backlogs,omitempty" validate:"omitempty,gte=0"`
	Skills     *[]string `json:"skills,omitempty"`
	GitHub     *string   `json:"github,omitempty" validate:"omitempty,url"`
	LinkedIn   *string   `json:"linkedin,omitempty" validate:"omitempty,url"`
	Portfolio  *string   `json:"portfolio,omitempty" validate:"omitempty,url"`
}

// ApplyRequest is a student's application to a drive.
type ApplyRequest struct {
	CompanyID string `json:"company_id" validate:"required"`
}

// UpdateStatusRequest moves an application to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ScheduleInterviewRequest books an interview for a student on a drive.
type ScheduleInterviewRequest struct {
	StudentID     string `json:"student_id" validate:"required"`
	CompanyID     string `json:"company_id" validate:"required"`
	InterviewDate string `json:"interview_date" validate:"required"`
	InterviewTime string `json:"interview_time,omitempty"`
	Mode          string `json:"mode,omitempty" validate:"omitempty,oneof=online offline"`
}

// AssignRecruiterRequest scopes an existing recruiter to a drive.
type AssignRecruiterRequest struct {
	RecruiterID string `json:"recruiter_id" validate:"required"`
}
