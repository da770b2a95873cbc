package server

import (
	"net/http"

	"github.com/jonathan/campus-placement/internal/types"
)

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var req types.ScheduleInterviewRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	iv, err := s.placement.ScheduleInterview(r.Context(), actor(r), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "Interview scheduled successfully",
		"id":        iv.ID,
		"interview": iv,
	})
}

// handleListInterviews lists interviews visible to the caller, optionally for one drive (?company_id=).
func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	ivs, err := s.placement.ListInterviews(r.Context(), actor(r), r.URL.Query().Get("company_id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "interviews", ivs)
}

func (s *Server) handleMyInterviews(w http.ResponseWriter, r *http.Request) {
	ivs, err := s.placement.ListMyInterviews(r.Context(), actor(r))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "interviews", ivs)
}
