package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jlindmark/floorlive/internal/dbconfig"
	"github.com/jlindmark/floorlive/internal/models"
)

// Team mirrors the JSON structure of the demo fixture
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Number int     `json:"number"`
	Goalie bool    `json:"goalie"`
	TeamID *string `json:"team_id"`
}

type Match struct {
	ID      string `json:"id"`
	TeamAID string `json:"team_a_id"`
	TeamBID string `json:"team_b_id"`
}

type Fixture struct {
	Teams   []Team   `json:"teams"`
	Players []Player `json:"players"`
	Match   *Match   `json:"match"`
}

func main() {
	// 1) Load the JSON fixture
	path := "internal/assets/demo.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert teams, then players
	var inserted, skipped, errs int

	for _, t := range fixture.Teams {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO teams (id, name, logo)
            VALUES ($1, $2, $3)
            ON CONFLICT (id) DO NOTHING
        `, t.ID, t.Name, t.Logo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting team %s: %v\n", t.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	for _, p := range fixture.Players {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO players (id, name, number, goalie, team_id, stats)
            VALUES ($1, $2, $3, $4, $5, '{}')
            ON CONFLICT (id) DO NOTHING
        `, p.ID, p.Name, p.Number, p.Goalie, p.TeamID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting player %s: %v\n", p.ID, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) One upcoming match between the first two teams
	if fixture.Match != nil {
		doc, err := buildMatchDoc(fixture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error building match doc: %v\n", err)
			errs++
		} else {
			cmdTag, err := pool.Exec(context.Background(), `
                INSERT INTO matches (id, status, doc)
                VALUES ($1, $2, $3)
                ON CONFLICT (id) DO NOTHING
            `, fixture.Match.ID, models.MatchUpcoming, doc)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error inserting match %s: %v\n", fixture.Match.ID, err)
				errs++
			} else if cmdTag.RowsAffected() == 1 {
				inserted++
			} else {
				skipped++
			}
		}
	}

	// 5) Print summary
	fmt.Printf(
		"Demo seed complete: %d teams, %d players, %d inserted, %d skipped, %d errors\n",
		len(fixture.Teams), len(fixture.Players), inserted, skipped, errs,
	)
}

func buildMatchDoc(fixture Fixture) ([]byte, error) {
	m := models.Match{
		ID:     uuid.MustParse(fixture.Match.ID),
		Status: models.MatchUpcoming,
		Period: 1,
		Time:   "00:00",
		Settings: models.MatchSettings{
			TotalPeriods:          3,
			PeriodDurationMinutes: 20,
			BreakDurationMinutes:  15,
		},
		Events:    models.EventLog{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, t := range fixture.Teams {
		team := models.Team{ID: uuid.MustParse(t.ID), Name: t.Name, Logo: t.Logo}
		switch t.ID {
		case fixture.Match.TeamAID:
			m.TeamA = team
		case fixture.Match.TeamBID:
			m.TeamB = team
		}
	}
	for _, p := range fixture.Players {
		if p.TeamID == nil {
			continue
		}
		rp := models.RosterPlayer{
			ID:     uuid.MustParse(p.ID),
			Name:   p.Name,
			Number: p.Number,
			Goalie: p.Goalie,
		}
		switch *p.TeamID {
		case fixture.Match.TeamAID:
			m.RosterA = append(m.RosterA, rp)
		case fixture.Match.TeamBID:
			m.RosterB = append(m.RosterB, rp)
		}
	}
	return json.Marshal(m)
}
