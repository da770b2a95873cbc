package server

import (
	"net/http"

	"github.com/jonathan/campus-placement/internal/types"
)

// handleListApplications lists every application, optionally filtered by ?status=.
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.placement.ListApplications(r.Context(), actor(r), r.URL.Query().Get("status"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "applications", apps)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateStatusRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	app, err := s.placement.UpdateApplicationStatus(r.Context(), actor(r), r.PathValue("id"), req.Status)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Application status updated to " + string(app.Status),
		"application": app,
	})
}
