package server

import (
	"log/slog"
	"net/http"

	"github.com/jonathan/campus-placement/internal/apperr"
	"github.com/jonathan/campus-placement/internal/types"
)

func (s *Server) handleListDrives(w http.ResponseWriter, r *http.Request) {
	drives, err := s.placement.ListDrives(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "companies", drives)
}

// handleCreateDrive posts a drive and then, optionally, scopes a recruiter to
// it. The drive is kept when the recruiter step fails; the failure is
// reported as recruiter_error alongside the created drive.
func (s *Server) handleCreateDrive(w http.ResponseWriter, r *http.Request) {
	var req types.CreateDriveRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	a := actor(r)
	drive, err := s.placement.CreateDrive(r.Context(), a, &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	res := map[string]any{
		"success": true,
		"message": "Company drive created successfully",
		"id":      drive.ID,
		"company": drive,
	}

	switch {
	case req.ExistingRecruiterID != "":
		if err := s.placement.AssignRecruiter(r.Context(), a, drive.ID, req.ExistingRecruiterID); err != nil {
			res["recruiter_error"] = apperr.From(err).Message
			break
		}
		drive.RecruiterID = req.ExistingRecruiterID
	case req.WantsNewRecruiter():
		recruiter, err := s.accounts.CreateRecruiter(r.Context(), a, &types.CreateRecruiterRequest{
			Name:     req.RecruiterName,
			Email:    req.RecruiterEmail,
			Password: req.RecruiterPassword,
			DriveID:  drive.ID,
		})
		if err != nil {
			res["recruiter_error"] = apperr.From(err).Message
			break
		}
		drive.RecruiterID = recruiter.ID
		res["recruiter"] = recruiter
	}

	if msg, ok := res["recruiter_error"]; ok {
		s.logger.Warn("drive created without recruiter",
			slog.String("drive_id", drive.ID),
			slog.Any("reason", msg),
		)
	}
	s.jsonResponse(w, http.StatusCreated, res)
}

func (s *Server) handleGetDrive(w http.ResponseWriter, r *http.Request) {
	drive, err := s.placement.GetDrive(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "company", drive)
}

func (s *Server) handleUpdateDrive(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateDriveRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	drive, err := s.placement.UpdateDrive(r.Context(), actor(r), r.PathValue("id"), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Company drive updated successfully",
		"company": drive,
	})
}

func (s *Server) handleDeleteDrive(w http.ResponseWriter, r *http.Request) {
	if err := s.placement.DeleteDrive(r.Context(), actor(r), r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.message(w, http.StatusOK, "Company drive deleted successfully")
}

func (s *Server) handleEligibleStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.placement.ListEligibleStudents(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "students", students)
}

func (s *Server) handleDriveApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.placement.ListDriveApplications(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "applications", apps)
}
