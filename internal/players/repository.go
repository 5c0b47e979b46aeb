package players

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jlindmark/floorlive/internal/models"
)

// ErrPlayerNotFound is returned when a player ID does not exist.
var ErrPlayerNotFound = errors.New("player not found")

// Repository implements player data access against Postgres. Career stats
// live in a JSONB column on the player row.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new players repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreatePlayer creates a new player. A nil team ID puts the player in the
// unassigned bank.
func (r *Repository) CreatePlayer(ctx context.Context, req CreatePlayerRequest) (*models.Player, error) {
	player := models.Player{
		ID:     uuid.New(),
		Name:   req.Name,
		Number: req.Number,
		Goalie: req.Goalie,
		TeamID: req.TeamID,
	}
	stats, err := json.Marshal(player.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal career stats: %w", err)
	}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO players (id, name, number, goalie, team_id, stats, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`,
		player.ID, player.Name, player.Number, player.Goalie, player.TeamID, stats,
	).Scan(&player.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &player, nil
}

// GetPlayer retrieves a player by ID.
func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, number, goalie, team_id, stats, created_at
		FROM players WHERE id = $1`,
		id,
	)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	return player, err
}

// ListPlayers retrieves all players ordered by name.
func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return r.list(ctx, `
		SELECT id, name, number, goalie, team_id, stats, created_at
		FROM players ORDER BY name`)
}

// ListPlayersByTeam retrieves the players assigned to a team.
func (r *Repository) ListPlayersByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Player, error) {
	return r.list(ctx, `
		SELECT id, name, number, goalie, team_id, stats, created_at
		FROM players WHERE team_id = $1 ORDER BY number`,
		teamID)
}

// ListBankPlayers retrieves players not assigned to any team.
func (r *Repository) ListBankPlayers(ctx context.Context) ([]models.Player, error) {
	return r.list(ctx, `
		SELECT id, name, number, goalie, team_id, stats, created_at
		FROM players WHERE team_id IS NULL ORDER BY name`)
}

// CountPlayersByTeam reports how many players are assigned to a team.
func (r *Repository) CountPlayersByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM players WHERE team_id = $1`, teamID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count players by team: %w", err)
	}
	return n, nil
}

// UpdatePlayer updates a player's identity fields.
func (r *Repository) UpdatePlayer(ctx context.Context, id uuid.UUID, req UpdatePlayerRequest) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE players SET name = $2, number = $3, goalie = $4
		WHERE id = $1
		RETURNING id, name, number, goalie, team_id, stats, created_at`,
		id, req.Name, req.Number, req.Goalie,
	)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	return player, err
}

// AssignToTeam moves a player onto a team, or into the bank when teamID is
// nil.
func (r *Repository) AssignToTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE players SET team_id = $2
		WHERE id = $1
		RETURNING id, name, number, goalie, team_id, stats, created_at`,
		id, teamID,
	)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	return player, err
}

// AdjustCareerStats adds the delta to the player's career totals in a single
// read-modify-write transaction.
func (r *Repository) AdjustCareerStats(ctx context.Context, id uuid.UUID, delta models.CareerStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw []byte
	err = tx.QueryRowContext(ctx, `
		SELECT stats FROM players WHERE id = $1 FOR UPDATE`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read career stats: %w", err)
	}

	var stats models.CareerStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return fmt.Errorf("failed to unmarshal career stats: %w", err)
	}
	stats.Goals += delta.Goals
	stats.Assists += delta.Assists
	stats.PenaltyMinutes += delta.PenaltyMinutes
	stats.Saves += delta.Saves
	stats.GoalsAgainst += delta.GoalsAgainst

	updated, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal career stats: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE players SET stats = $2 WHERE id = $1`, id, updated); err != nil {
		return fmt.Errorf("failed to update career stats: %w", err)
	}
	return tx.Commit()
}

// DeletePlayer deletes a player by ID.
func (r *Repository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var player models.Player
	var teamID uuid.NullUUID
	var stats []byte
	err := row.Scan(&player.ID, &player.Name, &player.Number, &player.Goalie, &teamID, &stats, &player.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	if teamID.Valid {
		player.TeamID = &teamID.UUID
	}
	if err := json.Unmarshal(stats, &player.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal career stats: %w", err)
	}
	return &player, nil
}
