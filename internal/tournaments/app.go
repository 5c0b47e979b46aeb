package tournaments

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// TournamentsRepository defines what the app layer needs from the
// repository.
type TournamentsRepository interface {
	CreateTournament(ctx context.Context, req CreateTournamentRequest) (*models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, req UpdateTournamentRequest) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error
}

// CreateTournamentRequest carries the fields for a new tournament.
type CreateTournamentRequest struct {
	Name   string                   `json:"name"`
	Groups []models.TournamentGroup `json:"groups"`
}

// UpdateTournamentRequest replaces the tournament's name and groups.
type UpdateTournamentRequest struct {
	Name   string                   `json:"name"`
	Groups []models.TournamentGroup `json:"groups"`
}

// App handles tournaments business logic. Standings are not computed here;
// they belong to the presentation layer.
type App struct {
	repo TournamentsRepository
}

// NewApp creates a new tournaments App.
func NewApp(repo TournamentsRepository) *App {
	return &App{repo: repo}
}

// CreateTournament creates a new tournament with validation.
func (a *App) CreateTournament(ctx context.Context, req CreateTournamentRequest) (*models.Tournament, error) {
	if err := validateTournament(req.Name, req.Groups); err != nil {
		return nil, err
	}
	for i := range req.Groups {
		if req.Groups[i].ID == uuid.Nil {
			req.Groups[i].ID = uuid.New()
		}
	}
	tournament, err := a.repo.CreateTournament(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	log.Printf("Created tournament: %s (%d groups)", tournament.Name, len(tournament.Groups))
	return tournament, nil
}

// GetTournament retrieves a tournament by ID.
func (a *App) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return a.repo.GetTournament(ctx, id)
}

// ListTournaments retrieves all tournaments.
func (a *App) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return a.repo.ListTournaments(ctx)
}

// UpdateTournament replaces a tournament's name and groups.
func (a *App) UpdateTournament(ctx context.Context, id uuid.UUID, req UpdateTournamentRequest) (*models.Tournament, error) {
	if err := validateTournament(req.Name, req.Groups); err != nil {
		return nil, err
	}
	for i := range req.Groups {
		if req.Groups[i].ID == uuid.Nil {
			req.Groups[i].ID = uuid.New()
		}
	}
	tournament, err := a.repo.UpdateTournament(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	log.Printf("Updated tournament: %s", tournament.Name)
	return tournament, nil
}

// DeleteTournament deletes a tournament. Matches linked to it keep their
// link; listings simply stop resolving it.
func (a *App) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.DeleteTournament(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	log.Printf("Deleted tournament: %s", id)
	return nil
}

func validateTournament(name string, groups []models.TournamentGroup) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("validation failed: tournament name is required")
	}
	for _, g := range groups {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("validation failed: group name is required")
		}
	}
	return nil
}
