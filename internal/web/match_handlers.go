package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/match"
	"github.com/jlindmark/floorlive/internal/models"
)

type createMatchBody struct {
	TeamAID      uuid.UUID             `json:"team_a_id"`
	TeamBID      uuid.UUID             `json:"team_b_id"`
	Settings     *models.MatchSettings `json:"settings,omitempty"`
	TournamentID *uuid.UUID            `json:"tournament_id,omitempty"`
	GroupID      *uuid.UUID            `json:"group_id,omitempty"`
	ScheduledAt  *time.Time            `json:"scheduled_at,omitempty"`
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var body createMatchBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.CreateMatch(r.Context(), match.CreateMatchRequest{
		TeamAID:      body.TeamAID,
		TeamBID:      body.TeamBID,
		Settings:     body.Settings,
		TournamentID: body.TournamentID,
		GroupID:      body.GroupID,
		ScheduledAt:  body.ScheduledAt,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.matches.ListMatches(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	m, err := s.matches.GetMatch(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	if err := s.matches.DeleteMatch(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type goalBody struct {
	TeamID   uuid.UUID  `json:"team_id"`
	ScorerID uuid.UUID  `json:"scorer_id"`
	AssistID *uuid.UUID `json:"assist_id,omitempty"`
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body goalBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.AddGoal(r.Context(), id, match.GoalRequest{
		TeamID:   body.TeamID,
		ScorerID: body.ScorerID,
		AssistID: body.AssistID,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type teamBody struct {
	TeamID uuid.UUID `json:"team_id"`
}

func (s *Server) handleRemoveLastGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body teamBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.RemoveLastGoal(r.Context(), id, body.TeamID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type penaltyBody struct {
	TeamID          uuid.UUID `json:"team_id"`
	PlayerID        uuid.UUID `json:"player_id"`
	DurationMinutes int       `json:"duration_minutes"`
}

func (s *Server) handleAddPenalty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body penaltyBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.AddPenalty(r.Context(), id, match.PenaltyRequest{
		TeamID:          body.TeamID,
		PlayerID:        body.PlayerID,
		DurationMinutes: body.DurationMinutes,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleRemoveLastPenalty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body teamBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.RemoveLastPenalty(r.Context(), id, body.TeamID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type saveBody struct {
	TeamID   uuid.UUID `json:"team_id"`
	GoalieID uuid.UUID `json:"goalie_id"`
}

func (s *Server) handleAddSave(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body saveBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.AddSave(r.Context(), id, match.SaveRequest{
		TeamID:   body.TeamID,
		GoalieID: body.GoalieID,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type toggleClockBody struct {
	// Displayed is the client's locally ticked mm:ss reading; it becomes
	// authoritative when the toggle pauses the clock.
	Displayed string `json:"displayed"`
}

func (s *Server) handleToggleClock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body toggleClockBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.ToggleClock(r.Context(), id, body.Displayed)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type setClockBody struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
	Period  int `json:"period"`
}

func (s *Server) handleSetTimeAndPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body setClockBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.SetTimeAndPeriod(r.Context(), id, body.Minutes, body.Seconds, body.Period)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleEndPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	m, err := s.matches.EndPeriod(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

type setGoalieBody struct {
	TeamID   uuid.UUID  `json:"team_id"`
	GoalieID *uuid.UUID `json:"goalie_id"`
}

func (s *Server) handleSetActiveGoalie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid match id")
		return
	}
	var body setGoalieBody
	if !decodeBody(w, r, &body) {
		return
	}
	m, err := s.matches.SetActiveGoalie(r.Context(), id, body.TeamID, body.GoalieID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}
