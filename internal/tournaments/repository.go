package tournaments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// ErrTournamentNotFound is returned when a tournament ID does not exist.
var ErrTournamentNotFound = errors.New("tournament not found")

// Repository implements tournament data access against Postgres. Groups are
// stored as a JSONB column on the tournament row.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new tournaments repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTournament creates a new tournament.
func (r *Repository) CreateTournament(ctx context.Context, req CreateTournamentRequest) (*models.Tournament, error) {
	tournament := models.Tournament{
		ID:     uuid.New(),
		Name:   req.Name,
		Groups: req.Groups,
	}
	groups, err := json.Marshal(tournament.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal groups: %w", err)
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO tournaments (id, name, groups, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at`,
		tournament.ID, tournament.Name, groups,
	).Scan(&tournament.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return &tournament, nil
}

// GetTournament retrieves a tournament by ID.
func (r *Repository) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, groups, created_at FROM tournaments WHERE id = $1`, id)
	tournament, err := scanTournament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	return tournament, err
}

// ListTournaments retrieves all tournaments ordered by name.
func (r *Repository) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, groups, created_at FROM tournaments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []models.Tournament
	for rows.Next() {
		tournament, err := scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *tournament)
	}
	return tournaments, rows.Err()
}

// UpdateTournament replaces a tournament's name and groups.
func (r *Repository) UpdateTournament(ctx context.Context, id uuid.UUID, req UpdateTournamentRequest) (*models.Tournament, error) {
	groups, err := json.Marshal(req.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal groups: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE tournaments SET name = $2, groups = $3
		WHERE id = $1
		RETURNING id, name, groups, created_at`,
		id, req.Name, groups,
	)
	tournament, err := scanTournament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	return tournament, err
}

// DeleteTournament deletes a tournament by ID.
func (r *Repository) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var tournament models.Tournament
	var groups []byte
	err := row.Scan(&tournament.ID, &tournament.Name, &groups, &tournament.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	if err := json.Unmarshal(groups, &tournament.Groups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal groups: %w", err)
	}
	return &tournament, nil
}
