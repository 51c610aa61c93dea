package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bestball/go/internal/dbconfig"
	"github.com/mcdev12/bestball/go/internal/draft/events"
	"github.com/mcdev12/bestball/go/internal/draft/gateway"
	"github.com/mcdev12/bestball/go/internal/draft/orchestrator"
	"github.com/mcdev12/bestball/go/internal/draft/persist"
	"github.com/mcdev12/bestball/go/internal/draft/room"
	"github.com/mcdev12/bestball/go/internal/playerpool"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Services holds every wired component of the draft service.
type Services struct {
	Bus          *events.Bus
	Registry     *room.Registry
	Pool         *playerpool.Pool
	Orchestrator *orchestrator.Orchestrator
	Connections  *gateway.ConnectionManager
	Broadcaster  *gateway.Broadcaster
	Handler      *gateway.Handler

	Relay          *persist.Relay
	SnapshotWriter *persist.SnapshotWriter
	RemoteApplier  *persist.RemoteApplier

	pgxPool *pgxpool.Pool
	sqlDB   *sql.DB
	natsCon *nats.Conn

	watchCtx context.Context
}

// setupServices wires the full service graph from configuration.
func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	s := &Services{watchCtx: ctx}
	clock := clockwork.NewRealClock()

	s.Bus = events.NewBus(256)
	s.Registry = room.NewRegistry(clock, s.Bus)

	// Persistence is optional: rooms stay correct on in-memory state alone.
	var (
		adapter persist.Adapter
		pg      *persist.Postgres
	)
	if cfg.Persistence.Enabled {
		dbCfg := dbconfig.NewConfigFromEnv()
		pgxPool, sqlDB, err := setupDatabase(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		s.pgxPool = pgxPool
		s.sqlDB = sqlDB
		pg = persist.NewPostgres(
			persist.NewPostgresStore(pgxPool),
			persist.NewEventLog(sqlDB),
		)
		adapter = pg

		pool, err := playerpool.LoadFromDB(ctx, pgxPool)
		if err != nil {
			return nil, fmt.Errorf("failed to load player pool: %w", err)
		}
		s.Pool = pool
	} else {
		pool, err := playerpool.LoadFromFile(cfg.PlayerPool.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load player pool: %w", err)
		}
		s.Pool = pool
	}

	strat := orchestrator.NewQueueFirstStrategy(s.Pool)
	s.Orchestrator = orchestrator.New(s.Registry, strat, s.Bus, clock, orchestrator.Config{
		NumWorkers: cfg.Draft.NumWorkers,
		EmitTicks:  cfg.Draft.EmitTicks,
	})

	s.Connections = gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	s.Broadcaster = gateway.NewBroadcaster(s.Bus, s.Connections)
	provider := gateway.NewStateProvider(s.Orchestrator)
	s.Handler = gateway.NewHandler(s.Registry, provider, s.Pool, s.Connections, s.onRoomStarted)

	if adapter != nil {
		relayCfg := persist.DefaultRelayConfig()

		var publisher persist.Publisher
		if cfg.NATS.Enabled {
			natsCfg := persist.DefaultNATSConfig()
			if cfg.NATS.URL != "" {
				natsCfg.URL = cfg.NATS.URL
			}
			nc, js, err := persist.Connect(natsCfg)
			if err != nil {
				return nil, err
			}
			s.natsCon = nc
			publisher = persist.NewJetStreamPublisher(js, natsCfg)
			s.RemoteApplier = persist.NewRemoteApplier(s.Registry, persist.NewRemoteConsumer(js, natsCfg))
		} else {
			listenerCfg := persist.DefaultListenerConfig()
			listenerCfg.DatabaseURL = dbconfig.NewConfigFromEnv().DSN()
			listener, err := persist.NewNotifyListener(listenerCfg)
			if err != nil {
				return nil, err
			}
			s.RemoteApplier = persist.NewRemoteApplier(s.Registry, listener)
		}

		s.Relay = persist.NewRelay(s.Bus, adapter, publisher, relayCfg)
		s.SnapshotWriter = persist.NewSnapshotWriter(adapter, relayCfg)

		// Rebuild the rooms that were live when the previous process
		// stopped. Restored active rooms get their countdown re-armed by
		// the orchestrator watch the attach callback spawns.
		restored, err := persist.Recover(ctx, pg, s.Registry, s.onRoomStarted)
		if err != nil {
			return nil, fmt.Errorf("recover persisted rooms: %w", err)
		}
		if restored > 0 {
			log.Info().Int("rooms", restored).Msg("persisted rooms recovered")
		}
	}

	return s, nil
}

// onRoomStarted attaches the per-room workers when a room goes active.
func (s *Services) onRoomStarted(st *room.Store) {
	go s.Orchestrator.Watch(s.watchCtx, st)
	if s.SnapshotWriter != nil {
		go s.SnapshotWriter.Watch(s.watchCtx, st)
	}
	log.Info().Str("room_id", st.Room().ID.String()).Msg("room workers attached")
}

// Close releases held connections.
func (s *Services) Close() {
	if s.natsCon != nil {
		s.natsCon.Close()
	}
	if s.sqlDB != nil {
		_ = s.sqlDB.Close()
	}
	if s.pgxPool != nil {
		s.pgxPool.Close()
	}
}
