package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/players"
	"github.com/jlindmark/floorlive/internal/teams"
	"github.com/jlindmark/floorlive/internal/tournaments"
)

func (s *Server) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teams.CreateTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	team, err := s.teams.CreateTeam(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, team)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	list, err := s.teams.ListTeams(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	team, err := s.teams.GetTeam(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	var req teams.UpdateTeamRequest
	if !decodeBody(w, r, &req) {
		return
	}
	team, err := s.teams.UpdateTeam(r.Context(), id, req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	if err := s.teams.DeleteTeam(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	list, err := s.players.ListPlayersByTeam(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.CreatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := s.players.CreatePlayer(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, player)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := s.players.ListPlayers(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleListBankPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := s.players.ListBankPlayers(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	player, err := s.players.GetPlayer(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var req players.UpdatePlayerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := s.players.UpdatePlayer(r.Context(), id, req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	if err := s.players.DeletePlayer(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type assignPlayerBody struct {
	// A null team ID moves the player to the unassigned bank.
	TeamID *uuid.UUID `json:"team_id"`
}

func (s *Server) handleAssignPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	var body assignPlayerBody
	if !decodeBody(w, r, &body) {
		return
	}
	player, err := s.players.AssignToTeam(r.Context(), id, body.TeamID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req tournaments.CreateTournamentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tournament, err := s.tournaments.CreateTournament(r.Context(), req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tournament)
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	list, err := s.tournaments.ListTournaments(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	tournament, err := s.tournaments.GetTournament(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tournament)
}

func (s *Server) handleUpdateTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	var req tournaments.UpdateTournamentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tournament, err := s.tournaments.UpdateTournament(r.Context(), id, req)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tournament)
}

func (s *Server) handleDeleteTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	if err := s.tournaments.DeleteTournament(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListTournamentMatches(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tournament id")
		return
	}
	list, err := s.matches.ListMatchesByTournament(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}
