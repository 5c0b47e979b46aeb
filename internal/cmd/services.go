package main

import (
	"database/sql"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/jlindmark/floorlive/internal/gateway"
	"github.com/jlindmark/floorlive/internal/match"
	"github.com/jlindmark/floorlive/internal/outbox"
	"github.com/jlindmark/floorlive/internal/players"
	"github.com/jlindmark/floorlive/internal/teams"
	"github.com/jlindmark/floorlive/internal/tournaments"
	"github.com/jlindmark/floorlive/internal/web"
)

// Services holds the wired application layers.
type Services struct {
	Web          *web.Server
	Gateway      *gateway.Service
	ConnManager  *gateway.ConnectionManager
	OutboxWorker *outbox.Worker
}

func setupServices(db *sql.DB, nc *nats.Conn, cfg *Config) *Services {
	// Repository layer
	outboxRepo := outbox.NewRepository(db)
	matchRepo := match.NewRepository(db, outboxRepo)
	teamsRepo := teams.NewRepository(db)
	playersRepo := players.NewRepository(db)
	tournamentsRepo := tournaments.NewRepository(db)

	// App layer
	playersApp := players.NewApp(playersRepo)
	teamsApp := teams.NewApp(teamsRepo, playersApp, matchRepo)
	tournamentsApp := tournaments.NewApp(tournamentsRepo)
	matchApp := match.NewApp(matchRepo, playersApp, teamsApp)

	// Service layer
	webServer := web.NewServer(matchApp, teamsApp, playersApp, tournamentsApp)
	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	gatewayService := gateway.NewService(connManager)

	var publisher outbox.EventPublisher
	if nc != nil {
		publisher = outbox.NewNATSPublisher(nc)
	} else {
		log.Warn().Msg("NATS unavailable, outbox events will be logged and dropped")
		publisher = outbox.LogPublisher{}
	}

	workerCfg := outbox.DefaultConfig()
	workerCfg.PollInterval = cfg.outboxPollInterval()
	workerCfg.BatchSize = cfg.Outbox.BatchSize
	worker := outbox.NewWorker(outboxRepo, publisher, workerCfg)

	return &Services{
		Web:          webServer,
		Gateway:      gatewayService,
		ConnManager:  connManager,
		OutboxWorker: worker,
	}
}
