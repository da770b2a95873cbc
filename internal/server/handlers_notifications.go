package server

import (
	"net/http"

	"github.com/jonathan/campus-placement/internal/notify"
)

// handleListNotifications returns the caller's newest notifications (?limit=, at most 50).
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", notify.DefaultLimit, notify.DefaultLimit)

	inbox, err := s.inbox.List(r.Context(), actor(r).ID, limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": inbox.Notifications,
		"unread_count":  inbox.UnreadCount,
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.inbox.MarkRead(r.Context(), actor(r).ID, r.PathValue("id")); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.message(w, http.StatusOK, "Notification marked as read")
}
