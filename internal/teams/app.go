package teams

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// TeamsRepository defines what the app layer needs from the repository.
type TeamsRepository interface {
	CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uuid.UUID) error
}

// PlayerCounter reports how many players are assigned to a team.
type PlayerCounter interface {
	CountPlayersByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
}

// MatchCounter reports how many matches reference a team.
type MatchCounter interface {
	CountMatchesByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
}

// CreateTeamRequest carries the fields for a new team.
type CreateTeamRequest struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// UpdateTeamRequest carries the updatable team fields.
type UpdateTeamRequest struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// App handles teams business logic.
type App struct {
	repo    TeamsRepository
	players PlayerCounter
	matches MatchCounter
}

// NewApp creates a new teams App.
func NewApp(repo TeamsRepository, players PlayerCounter, matches MatchCounter) *App {
	return &App{
		repo:    repo,
		players: players,
		matches: matches,
	}
}

// CreateTeam creates a new team with validation.
func (a *App) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("validation failed: team name is required")
	}
	team, err := a.repo.CreateTeam(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	log.Printf("Created team: %s", team.Name)
	return team, nil
}

// GetTeam retrieves a team by ID.
func (a *App) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return a.repo.GetTeam(ctx, id)
}

// ListTeams retrieves all teams.
func (a *App) ListTeams(ctx context.Context) ([]models.Team, error) {
	return a.repo.ListTeams(ctx)
}

// UpdateTeam updates a team's name and logo.
func (a *App) UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("validation failed: team name is required")
	}
	team, err := a.repo.UpdateTeam(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	log.Printf("Updated team: %s", team.Name)
	return team, nil
}

// DeleteTeam deletes a team. Deletion is refused while players are assigned
// to the team or matches reference it.
func (a *App) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	playerCount, err := a.players.CountPlayersByTeam(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check team players: %w", err)
	}
	if playerCount > 0 {
		return fmt.Errorf("cannot delete team: %d players are assigned to it", playerCount)
	}
	matchCount, err := a.matches.CountMatchesByTeam(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check team matches: %w", err)
	}
	if matchCount > 0 {
		return fmt.Errorf("cannot delete team: %d matches reference it", matchCount)
	}
	if err := a.repo.DeleteTeam(ctx, id); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	log.Printf("Deleted team: %s", id)
	return nil
}
