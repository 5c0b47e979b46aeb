package players

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// PlayersRepository defines what the app layer needs from the repository.
type PlayersRepository interface {
	CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error)
	ListBankPlayers(ctx context.Context) ([]models.Player, error)
	CountPlayersByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, req UpdatePlayerRequest) (*models.Player, error)
	AssignToTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) (*models.Player, error)
	AdjustCareerStats(ctx context.Context, id uuid.UUID, delta models.CareerStats) error
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

// CreatePlayerRequest carries the fields for a new player. A nil TeamID
// creates the player in the unassigned bank.
type CreatePlayerRequest struct {
	Name   string     `json:"name"`
	Number int        `json:"number"`
	Goalie bool       `json:"goalie"`
	TeamID *uuid.UUID `json:"team_id"`
}

// UpdatePlayerRequest carries the updatable identity fields.
type UpdatePlayerRequest struct {
	Name   string `json:"name"`
	Number int    `json:"number"`
	Goalie bool   `json:"goalie"`
}

// App handles players business logic.
type App struct {
	repo PlayersRepository
}

// NewApp creates a new players App.
func NewApp(repo PlayersRepository) *App {
	return &App{repo: repo}
}

// CreatePlayer creates a new player with validation.
func (a *App) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	if err := validatePlayer(req.Name, req.Number); err != nil {
		return nil, err
	}
	player, err := a.repo.CreatePlayer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	log.Printf("Created player: %s (#%d)", player.Name, player.Number)
	return player, nil
}

// GetPlayer retrieves a player by ID.
func (a *App) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return a.repo.GetPlayer(ctx, id)
}

// ListPlayers retrieves all players.
func (a *App) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return a.repo.ListPlayers(ctx)
}

// ListPlayersByTeam retrieves the players assigned to a team.
func (a *App) ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error) {
	return a.repo.ListPlayersByTeam(ctx, teamID)
}

// ListBankPlayers retrieves the unassigned players.
func (a *App) ListBankPlayers(ctx context.Context) ([]models.Player, error) {
	return a.repo.ListBankPlayers(ctx)
}

// CountPlayersByTeam reports how many players are assigned to a team.
func (a *App) CountPlayersByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	return a.repo.CountPlayersByTeam(ctx, teamID)
}

// UpdatePlayer updates a player's identity fields.
func (a *App) UpdatePlayer(ctx context.Context, id uuid.UUID, req UpdatePlayerRequest) (*models.Player, error) {
	if err := validatePlayer(req.Name, req.Number); err != nil {
		return nil, err
	}
	player, err := a.repo.UpdatePlayer(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}
	log.Printf("Updated player: %s (#%d)", player.Name, player.Number)
	return player, nil
}

// AssignToTeam moves a player onto a team, or into the bank when teamID is
// nil.
func (a *App) AssignToTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) (*models.Player, error) {
	player, err := a.repo.AssignToTeam(ctx, id, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign player: %w", err)
	}
	if teamID == nil {
		log.Printf("Moved player %s to the bank", player.Name)
	} else {
		log.Printf("Assigned player %s to team %s", player.Name, teamID)
	}
	return player, nil
}

// AdjustCareerStats adds the delta to the player's career totals. Deltas may
// be negative when an admin removes a recorded event.
func (a *App) AdjustCareerStats(ctx context.Context, id uuid.UUID, delta models.CareerStats) error {
	if err := a.repo.AdjustCareerStats(ctx, id, delta); err != nil {
		return fmt.Errorf("failed to adjust career stats: %w", err)
	}
	return nil
}

// DeletePlayer deletes a player by ID.
func (a *App) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeletePlayer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	log.Printf("Deleted player: %s", id)
	return nil
}

func validatePlayer(name string, number int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("validation failed: player name is required")
	}
	if number < 0 || number > 99 {
		return fmt.Errorf("validation failed: player number must be between 0 and 99")
	}
	return nil
}
