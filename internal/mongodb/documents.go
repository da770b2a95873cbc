package mongodb

import (
	"strings"
	"time"

	"github.com/jonathan/campus-placement/internal/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type actorDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	EmailLower     string             `bson:"email_lower"`
	PasswordHash   string             `bson:"password_hash"`
	Role           string             `bson:"role"`
	Status         string             `bson:"status"`
	AssignedDrives []string           `bson:"assigned_drives"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func newActorDoc(a *types.Actor, created time.Time) actorDoc {
	drives := a.AssignedDrives
	if drives == nil {
		drives = []string{}
	}
	return actorDoc{
		ID:             primitive.NewObjectID(),
		Name:           a.Name,
		Email:          a.Email,
		EmailLower:     strings.ToLower(a.Email),
		PasswordHash:   a.PasswordHash,
		Role:           string(a.Role),
		Status:         string(a.Status),
		AssignedDrives: drives,
		CreatedAt:      created,
	}
}

func (d actorDoc) record() types.Actor {
	a := types.Actor{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         types.Role(d.Role),
		Status:       types.AccountStatus(d.Status),
		CreatedAt:    d.CreatedAt,
	}
	if len(d.AssignedDrives) > 0 {
		a.AssignedDrives = d.AssignedDrives
	}
	return a
}

type profileDoc struct {
	StudentID       primitive.ObjectID `bson:"_id"`
	Name            string             `bson:"name"`
	Department      string             `bson:"department"`
	RollNumber      string             `bson:"roll_number"`
	GPA             float64            `bson:"gpa"`
	Backlogs        int                `bson:"backlogs"`
	Skills          []string           `bson:"skills"`
	GitHub          string             `bson:"github"`
	LinkedIn        string             `bson:"linkedin"`
	Portfolio       string             `bson:"portfolio"`
	PlacementStatus string             `bson:"placement_status"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d profileDoc) record() types.StudentProfile {
	skills := d.Skills
	if skills == nil {
		skills = []string{}
	}
	return types.StudentProfile{
		StudentID:       d.StudentID.Hex(),
		Name:            d.Name,
		Department:      d.Department,
		RollNumber:      d.RollNumber,
		GPA:             d.GPA,
		Backlogs:        d.Backlogs,
		Skills:          skills,
		GitHub:          d.GitHub,
		LinkedIn:        d.LinkedIn,
		Portfolio:       d.Portfolio,
		PlacementStatus: types.PlacementStatus(d.PlacementStatus),
		CreatedAt:       d.CreatedAt,
	}
}

type driveDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	CompanyName     string             `bson:"company_name"`
	JobRole         string             `bson:"role"`
	MinGPA          float64            `bson:"min_gpa"`
	AllowedBacklogs int                `bson:"allowed_backlogs"`
	RequiredSkills  []string           `bson:"required_skills"`
	DriveDate       string             `bson:"drive_date"`
	RecruiterID     string             `bson:"recruiter_id"`
	CreatedBy       string             `bson:"created_by"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (d driveDoc) record() types.Drive {
	skills := d.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return types.Drive{
		ID:              d.ID.Hex(),
		CompanyName:     d.CompanyName,
		JobRole:         d.JobRole,
		MinGPA:          d.MinGPA,
		AllowedBacklogs: d.AllowedBacklogs,
		RequiredSkills:  skills,
		DriveDate:       d.DriveDate,
		RecruiterID:     d.RecruiterID,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
	}
}

type applicationDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	StudentID string             `bson:"student_id"`
	CompanyID string             `bson:"company_id"`
	Status    string             `bson:"status"`
	AppliedAt time.Time          `bson:"applied_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d applicationDoc) record() types.Application {
	return types.Application{
		ID:        d.ID.Hex(),
		StudentID: d.StudentID,
		CompanyID: d.CompanyID,
		Status:    types.ApplicationStatus(d.Status),
		AppliedAt: d.AppliedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type interviewDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	StudentID string             `bson:"student_id"`
	CompanyID string             `bson:"company_id"`
	Date      string             `bson:"interview_date"`
	Time      string             `bson:"interview_time"`
	Mode      string             `bson:"mode"`
	CreatedBy string             `bson:"created_by"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d interviewDoc) record() types.Interview {
	return types.Interview{
		ID:        d.ID.Hex(),
		StudentID: d.StudentID,
		CompanyID: d.CompanyID,
		Date:      d.Date,
		Time:      d.Time,
		Mode:      types.InterviewMode(d.Mode),
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
	}
}

type notificationDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Message   string             `bson:"message"`
	Type      string             `bson:"type"`
	Read      bool               `bson:"read"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d notificationDoc) record() types.Notification {
	return types.Notification{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Message:   d.Message,
		Type:      types.NotificationType(d.Type),
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

// records converts decoded documents with their record method.
func records[D interface{ record() R }, R any](docs []D) []R {
	out := make([]R, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out
}
