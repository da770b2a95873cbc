package server

import (
	"net/http"

	"github.com/jonathan/campus-placement/internal/types"
)

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.placement.ListStudents(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "students", students)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.placement.GetProfile(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "profile", profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProfileRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	profile, err := s.placement.UpdateProfile(r.Context(), actor(r), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// handleEligibleDrives lists the drives a student qualifies for. The
// placement office names the student with ?student_id=.
func (s *Server) handleEligibleDrives(w http.ResponseWriter, r *http.Request) {
	drives, err := s.placement.ListEligibleDrives(r.Context(), actor(r), r.URL.Query().Get("student_id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "companies", drives)
}

func (s *Server) handleRecommendedDrives(w http.ResponseWriter, r *http.Request) {
	recs, err := s.placement.Recommend(r.Context(), actor(r), r.URL.Query().Get("student_id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "recommendations", recs)
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	app, err := s.placement.SubmitApplication(r.Context(), actor(r), req.CompanyID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     "Application submitted successfully",
		"application": app,
	})
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.placement.ListMyApplications(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "applications", apps)
}
