// Package web exposes the admin and public JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/match"
	"github.com/jlindmark/floorlive/internal/models"
	"github.com/jlindmark/floorlive/internal/players"
	"github.com/jlindmark/floorlive/internal/teams"
	"github.com/jlindmark/floorlive/internal/tournaments"
)

// MatchService is the slice of the match app the handlers need.
type MatchService interface {
	CreateMatch(ctx context.Context, req match.CreateMatchRequest) (*models.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ListMatches(ctx context.Context) ([]models.Match, error)
	ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Match, error)
	DeleteMatch(ctx context.Context, id uuid.UUID) error
	AddGoal(ctx context.Context, matchID uuid.UUID, req match.GoalRequest) (*models.Match, error)
	RemoveLastGoal(ctx context.Context, matchID, teamID uuid.UUID) (*models.Match, error)
	AddPenalty(ctx context.Context, matchID uuid.UUID, req match.PenaltyRequest) (*models.Match, error)
	RemoveLastPenalty(ctx context.Context, matchID, teamID uuid.UUID) (*models.Match, error)
	AddSave(ctx context.Context, matchID uuid.UUID, req match.SaveRequest) (*models.Match, error)
	ToggleClock(ctx context.Context, matchID uuid.UUID, displayed string) (*models.Match, error)
	SetTimeAndPeriod(ctx context.Context, matchID uuid.UUID, minutes, seconds, period int) (*models.Match, error)
	EndPeriod(ctx context.Context, matchID uuid.UUID) (*models.Match, error)
	SetActiveGoalie(ctx context.Context, matchID, teamID uuid.UUID, goalieID *uuid.UUID) (*models.Match, error)
}

// TeamService is the slice of the teams app the handlers need.
type TeamService interface {
	CreateTeam(ctx context.Context, req teams.CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, req teams.UpdateTeamRequest) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

// PlayerService is the slice of the players app the handlers need.
type PlayerService interface {
	CreatePlayer(ctx context.Context, req players.CreatePlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error)
	ListBankPlayers(ctx context.Context) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, req players.UpdatePlayerRequest) (*models.Player, error)
	AssignToTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) (*models.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

// TournamentService is the slice of the tournaments app the handlers need.
type TournamentService interface {
	CreateTournament(ctx context.Context, req tournaments.CreateTournamentRequest) (*models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, req tournaments.UpdateTournamentRequest) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error
}

// Server holds the handler dependencies.
type Server struct {
	matches     MatchService
	teams       TeamService
	players     PlayerService
	tournaments TournamentService
}

// NewServer creates the API server.
func NewServer(matches MatchService, teams TeamService, players PlayerService, tournaments TournamentService) *Server {
	return &Server{
		matches:     matches,
		teams:       teams,
		players:     players,
		tournaments: tournaments,
	}
}

// Routes registers every API route on the router.
func (s *Server) Routes(router *mux.Router) {
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleGetMatch).Methods("GET")
	api.HandleFunc("/matches/{id}", s.handleDeleteMatch).Methods("DELETE")

	api.HandleFunc("/matches/{id}/goals", s.handleAddGoal).Methods("POST")
	api.HandleFunc("/matches/{id}/goals/last", s.handleRemoveLastGoal).Methods("DELETE")
	api.HandleFunc("/matches/{id}/penalties", s.handleAddPenalty).Methods("POST")
	api.HandleFunc("/matches/{id}/penalties/last", s.handleRemoveLastPenalty).Methods("DELETE")
	api.HandleFunc("/matches/{id}/saves", s.handleAddSave).Methods("POST")
	api.HandleFunc("/matches/{id}/clock/toggle", s.handleToggleClock).Methods("POST")
	api.HandleFunc("/matches/{id}/clock", s.handleSetTimeAndPeriod).Methods("PUT")
	api.HandleFunc("/matches/{id}/period/end", s.handleEndPeriod).Methods("POST")
	api.HandleFunc("/matches/{id}/goalie", s.handleSetActiveGoalie).Methods("PUT")

	api.HandleFunc("/teams", s.handleCreateTeam).Methods("POST")
	api.HandleFunc("/teams", s.handleListTeams).Methods("GET")
	api.HandleFunc("/teams/{id}", s.handleGetTeam).Methods("GET")
	api.HandleFunc("/teams/{id}", s.handleUpdateTeam).Methods("PUT")
	api.HandleFunc("/teams/{id}", s.handleDeleteTeam).Methods("DELETE")
	api.HandleFunc("/teams/{id}/players", s.handleListTeamPlayers).Methods("GET")

	api.HandleFunc("/players", s.handleCreatePlayer).Methods("POST")
	api.HandleFunc("/players", s.handleListPlayers).Methods("GET")
	api.HandleFunc("/players/bank", s.handleListBankPlayers).Methods("GET")
	api.HandleFunc("/players/{id}", s.handleGetPlayer).Methods("GET")
	api.HandleFunc("/players/{id}", s.handleUpdatePlayer).Methods("PUT")
	api.HandleFunc("/players/{id}", s.handleDeletePlayer).Methods("DELETE")
	api.HandleFunc("/players/{id}/team", s.handleAssignPlayer).Methods("PUT")

	api.HandleFunc("/tournaments", s.handleCreateTournament).Methods("POST")
	api.HandleFunc("/tournaments", s.handleListTournaments).Methods("GET")
	api.HandleFunc("/tournaments/{id}", s.handleGetTournament).Methods("GET")
	api.HandleFunc("/tournaments/{id}", s.handleUpdateTournament).Methods("PUT")
	api.HandleFunc("/tournaments/{id}", s.handleDeleteTournament).Methods("DELETE")
	api.HandleFunc("/tournaments/{id}/matches", s.handleListTournamentMatches).Methods("GET")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondAppError maps application errors to status codes. Disabled-control
// violations are conflicts; unknown IDs are not found; validation failures
// are bad requests; everything else is a server error the client retries by
// re-reading.
func respondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, match.ErrClockRunning):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, match.ErrMatchNotFound),
		errors.Is(err, teams.ErrTeamNotFound),
		errors.Is(err, players.ErrPlayerNotFound),
		errors.Is(err, tournaments.ErrTournamentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "cannot delete"):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
