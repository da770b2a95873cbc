//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validate = validator.New()

func TestRegisterRequest_Validation(t *testing.T) {
	valid := RegisterRequest{
		Name:       "Asha Rao",
		Email:      "asha@example.edu",
		Password:   "secret1",
		Department: "CSE",
		RollNumber: "CS-042",
	}

	tests := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			mutate:  func(r *RegisterRequest) {},
			wantErr: false,
		},
		{
			name:    "missing name",
			mutate:  func(r *RegisterRequest) { r.Name = "" },
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "invalid email",
			mutate:  func(r *RegisterRequest) { r.Email = "not-an-email" },
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "password too short",
			mutate:  func(r *RegisterRequest) { r.Password = "12345" },
			wantErr: true,
			errMsg:  "min",
		},
		{
			name:    "password exactly six characters",
			mutate:  func(r *RegisterRequest) { r.Password = "123456" },
			wantErr: false,
		},
		{
			name:    "missing department",
			mutate:  func(r *RegisterRequest) { r.Department = "" },
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "missing roll number",
			mutate:  func(r *RegisterRequest) { r.RollNumber = "" },
			wantErr: true,
			errMsg:  "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := validate.Struct(req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validation(t *testing.T) {
	assert.NoError(t, validate.Struct(&LoginRequest{Email: "a@b.co", Password: "x"}))
	assert.Error(t, validate.Struct(&LoginRequest{Email: "a@b.co"}))
	assert.Error(t, validate.Struct(&LoginRequest{Email: "ab.co", Password: "x"}))
}

func TestScheduleInterviewRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     ScheduleInterviewRequest
		wantErr bool
	}{
		{
			name:    "defaults mode",
			req:     ScheduleInterviewRequest{StudentID: "s", CompanyID: "c", InterviewDate: "2026-11-02"},
			wantErr: false,
		},
		{
			name:    "offline mode",
			req:     ScheduleInterviewRequest{StudentID: "s", CompanyID: "c", InterviewDate: "2026-11-02", Mode: "offline"},
			wantErr: false,
		},
		{
			name:    "unknown mode",
			req:     ScheduleInterviewRequest{StudentID: "s", CompanyID: "c", InterviewDate: "2026-11-02", Mode: "carrier-pigeon"},
			wantErr: true,
		},
		{
			name:    "missing date",
			req:     ScheduleInterviewRequest{StudentID: "s", CompanyID: "c"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateDriveRequest_WantsNewRecruiter(t *testing.T) {
	req := CreateDriveRequest{RecruiterName: "R", RecruiterEmail: "r@corp.io"}
	assert.False(t, req.WantsNewRecruiter())

	req.RecruiterPassword = "secret1"
	assert.True(t, req.WantsNewRecruiter())
}

func TestActor_PasswordHashNotSerialized(t *testing.T) {
	actor := Actor{ID: "a1", Email: "a@b.co", PasswordHash: "$2a$12$hash", Role: RoleTPO, Status: AccountActive}

	data, err := json.Marshal(actor)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.Contains(t, string(data), `"role":"tpo"`)
}
