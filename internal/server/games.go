package server

import (
	"net/http"
)

// CreateGameRequest is the body of POST /game/new
type CreateGameRequest struct {
	PlayerName string `json:"playerName"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := parseBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	v, err := s.games.Create(r.Context(), req.PlayerName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	v, err := s.games.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	views, err := s.games.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.games.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	v, err := s.games.Hit(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStand(w http.ResponseWriter, r *http.Request) {
	v, err := s.games.Stand(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
