package server

import (
	"log/slog"
	"net/http"

	"github.com/jonathan/campus-placement/internal/types"
)

// handleRegister creates a pending student account. No token is issued until
// the placement office approves it.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	user, err := s.accounts.Register(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration successful. Your account is pending TPO approval.",
		"user":    user,
	})
}

// handleLogin checks credentials and issues a token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	user, err := s.accounts.Login(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to generate token", slog.String("actor_id", user.ID), slog.String("error", err.Error()))
		s.jsonResponse(w, http.StatusInternalServerError, errorBody{Error: "Failed to generate token", Kind: "infrastructure"})
		return
	}

	s.jsonResponse(w, http.StatusOK, types.LoginResponse{User: user, Token: token})
}

// handleMe returns the authenticated account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.Me(r.Context(), actor(r).ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.success(w, "user", user)
}
