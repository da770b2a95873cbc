package server

import (
	"net/http"

	"github.com/jonathan/campus-placement/internal/types"
)

func (s *Server) handlePendingStudents(w http.ResponseWriter, r *http.Request) {
	pending, err := s.accounts.ListPendingStudents(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "students", pending)
}

func (s *Server) handleApproveStudent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.accounts.ApproveStudent(r.Context(), actor(r), r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.message(w, http.StatusOK, "Student approved successfully")
}

func (s *Server) handleRejectStudent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.accounts.RejectStudent(r.Context(), actor(r), r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.message(w, http.StatusOK, "Student rejected")
}

func (s *Server) handleListRecruiters(w http.ResponseWriter, r *http.Request) {
	recruiters, err := s.accounts.ListRecruiters(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "recruiters", recruiters)
}

func (s *Server) handleCreateRecruiter(w http.ResponseWriter, r *http.Request) {
	var req types.CreateRecruiterRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	recruiter, err := s.accounts.CreateRecruiter(r.Context(), actor(r), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "Recruiter created successfully",
		"recruiter": recruiter,
	})
}

func (s *Server) handleAssignRecruiter(w http.ResponseWriter, r *http.Request) {
	var req types.AssignRecruiterRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	if err := s.placement.AssignRecruiter(r.Context(), actor(r), r.PathValue("id"), req.RecruiterID); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.message(w, http.StatusOK, "Recruiter assigned successfully")
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.Report(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "analytics", report)
}
