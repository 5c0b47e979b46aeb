package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// ErrTeamNotFound is returned when a team ID does not exist.
var ErrTeamNotFound = errors.New("team not found")

// Repository implements team data access against Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new teams repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTeam creates a new team.
func (r *Repository) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	team := models.Team{
		ID:   uuid.New(),
		Name: req.Name,
		Logo: req.Logo,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO teams (id, name, logo, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at`,
		team.ID, team.Name, team.Logo,
	).Scan(&team.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return &team, nil
}

// GetTeam retrieves a team by ID.
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, logo, created_at FROM teams WHERE id = $1`,
		id,
	).Scan(&team.ID, &team.Name, &team.Logo, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

// ListTeams retrieves all teams ordered by name.
func (r *Repository) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, logo, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Logo, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// UpdateTeam updates a team's name and logo.
func (r *Repository) UpdateTeam(ctx context.Context, id uuid.UUID, req UpdateTeamRequest) (*models.Team, error) {
	var team models.Team
	err := r.db.QueryRowContext(ctx, `
		UPDATE teams SET name = $2, logo = $3
		WHERE id = $1
		RETURNING id, name, logo, created_at`,
		id, req.Name, req.Logo,
	).Scan(&team.ID, &team.Name, &team.Logo, &team.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return &team, nil
}

// DeleteTeam deletes a team by ID.
func (r *Repository) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTeamNotFound
	}
	return nil
}
