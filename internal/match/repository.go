package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"

	"github.com/jlindmark/floorlive/internal/events"
	"github.com/jlindmark/floorlive/internal/models"
	"github.com/jlindmark/floorlive/internal/outbox"
)

// ErrMatchNotFound is returned when a match ID does not exist.
var ErrMatchNotFound = errors.New("match not found")

// tournamentRef is the relational shadow of the document's tournament link,
// kept in its own nullable column so tournament listings do not have to dig
// through every document.
type tournamentRef struct {
	TournamentID uuid.UUID  `json:"tournament_id"`
	GroupID      *uuid.UUID `json:"group_id,omitempty"`
}

// Repository stores each match as a whole JSONB document and replaces it on
// every mutation. Snapshot writes and their outbox notifications commit in
// one transaction.
type Repository struct {
	db     *sql.DB
	outbox *outbox.Repository
}

func NewRepository(db *sql.DB, ob *outbox.Repository) *Repository {
	return &Repository{db: db, outbox: ob}
}

// CreateMatch inserts a new match document and enqueues the created event.
func (r *Repository) CreateMatch(ctx context.Context, m *models.Match) error {
	doc, ref, err := encodeMatch(m)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, status, doc, tournament_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, string(m.Status), doc, ref, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	if err := r.outbox.Insert(ctx, tx, m.ID, events.TypeMatchCreated, doc); err != nil {
		return err
	}
	return tx.Commit()
}

// GetMatch retrieves one match document.
func (r *Repository) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM matches WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return decodeMatch(doc)
}

// ListMatches retrieves all matches, newest first.
func (r *Repository) ListMatches(ctx context.Context) ([]models.Match, error) {
	return r.list(ctx, `SELECT doc FROM matches ORDER BY created_at DESC`)
}

// ListMatchesByTournament retrieves the matches linked to a tournament.
func (r *Repository) ListMatchesByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.Match, error) {
	return r.list(ctx, `
		SELECT doc FROM matches
		WHERE tournament_ref->>'tournament_id' = $1
		ORDER BY created_at DESC`,
		tournamentID.String())
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m, err := decodeMatch(doc)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// SaveSnapshot replaces the stored document and enqueues the given outbox
// event atomically. The previous document is gone once this commits; there
// is no merge.
func (r *Repository) SaveSnapshot(ctx context.Context, m *models.Match, eventType string) error {
	doc, ref, err := encodeMatch(m)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE matches
		SET status = $2, doc = $3, tournament_ref = $4, updated_at = $5
		WHERE id = $1`,
		m.ID, string(m.Status), doc, ref, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to replace match: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMatchNotFound
	}
	if err := r.outbox.Insert(ctx, tx, m.ID, eventType, doc); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteMatch removes the match and enqueues the deleted event.
func (r *Repository) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMatchNotFound
	}
	payload, _ := json.Marshal(map[string]string{"id": id.String()})
	if err := r.outbox.Insert(ctx, tx, id, events.TypeMatchDeleted, payload); err != nil {
		return err
	}
	return tx.Commit()
}

// CountMatchesByTeam reports how many matches reference the team. Used by
// the team delete guard.
func (r *Repository) CountMatchesByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM matches
		WHERE doc->'team_a'->>'id' = $1 OR doc->'team_b'->>'id' = $1`,
		teamID.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches by team: %w", err)
	}
	return n, nil
}

func encodeMatch(m *models.Match) ([]byte, pqtype.NullRawMessage, error) {
	doc, err := json.Marshal(m)
	if err != nil {
		return nil, pqtype.NullRawMessage{}, fmt.Errorf("failed to marshal match document: %w", err)
	}
	var ref pqtype.NullRawMessage
	if m.TournamentID != nil {
		raw, err := json.Marshal(tournamentRef{TournamentID: *m.TournamentID, GroupID: m.GroupID})
		if err != nil {
			return nil, pqtype.NullRawMessage{}, fmt.Errorf("failed to marshal tournament ref: %w", err)
		}
		ref = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}
	return doc, ref, nil
}

func decodeMatch(doc []byte) (*models.Match, error) {
	var m models.Match
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match document: %w", err)
	}
	return &m, nil
}
