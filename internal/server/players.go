package server

import (
	"net/http"
	"time"

	"github.com/lox/blackjack/internal/player"
)

// RegisterPlayerRequest is the body of POST /player/register
type RegisterPlayerRequest struct {
	Name string `json:"name"`
}

// RenamePlayerRequest is the body of PUT /player/{id}
type RenamePlayerRequest struct {
	NewName string `json:"newName"`
}

// PlayerResponse is the JSON shape of a player
type PlayerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
	TotalScore  int       `json:"totalScore"`
	WinRate     float64   `json:"winRate"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newPlayerResponse(p *player.Player) PlayerResponse {
	return PlayerResponse{
		ID:          p.ID,
		Name:        p.Name,
		GamesPlayed: p.GamesPlayed,
		GamesWon:    p.GamesWon,
		TotalScore:  p.TotalScore,
		WinRate:     p.WinRate(),
		CreatedAt:   p.CreatedAt,
	}
}

func (s *Server) handleRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req RegisterPlayerRequest
	if err := parseBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.players.Register(r.Context(), req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPlayerResponse(p))
}

func (s *Server) handlePlayerByID(w http.ResponseWriter, r *http.Request) {
	p, err := s.players.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlayerResponse(p))
}

func (s *Server) handlePlayerByName(w http.ResponseWriter, r *http.Request) {
	p, err := s.players.ByName(r.Context(), r.PathValue("name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlayerResponse(p))
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.players.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		out = append(out, newPlayerResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := s.players.Ranking(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleRenamePlayer(w http.ResponseWriter, r *http.Request) {
	var req RenamePlayerRequest
	if err := parseBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.players.Rename(r.Context(), r.PathValue("id"), req.NewName)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlayerResponse(p))
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.players.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
