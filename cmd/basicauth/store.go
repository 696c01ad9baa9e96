package main

import (
	"context"
	"database/sql"

	"github.com/dogmatiq/escf/persistence"
	"github.com/dogmatiq/escf/persistence/boltpersistence"
	"github.com/dogmatiq/escf/persistence/memory"
	"github.com/dogmatiq/escf/persistence/redispersistence"
	"github.com/dogmatiq/escf/persistence/sqlpersistence"
	"github.com/dogmatiq/escf/persistence/sqlpersistence/postgres"
	"github.com/dogmatiq/escf/persistence/sqlpersistence/sqlite"
	"github.com/redis/go-redis/v9"
)

// stores are the resources used by the demo.
type stores struct {
	State  persistence.StateStore
	Events persistence.EventStore

	// DB is the SQLite database that holds the projections' tables.
	DB *sql.DB

	closers persistence.CloserSet
}

// Close closes every store.
func (s *stores) Close() error {
	return s.closers.Close()
}

// openStores opens the stores selected by cfg.
func openStores(ctx context.Context, cfg config) (_ *stores, err error) {
	s := &stores{}
	defer func() {
		if err != nil {
			s.Close() // nolint:errcheck
		}
	}()

	projections, err := sqlpersistence.Open(
		ctx,
		sqlite.DriverName,
		sqlite.DSN(cfg.SQLitePath),
		sqlite.Driver,
	)
	if err != nil {
		return nil, err
	}
	s.closers.Add(projections)
	s.DB = projections.DB()

	switch cfg.Store {
	case "memory":
		s.State = &memory.StateStore{}
		s.Events = &memory.EventStore{}

	case "bolt":
		b, err := boltpersistence.Open(ctx, cfg.BoltPath, 0, nil)
		if err != nil {
			return nil, err
		}
		s.closers.Add(b)
		s.State = b
		s.Events = b

	case "sqlite":
		s.State = projections
		s.Events = projections

	case "postgres":
		p, err := sqlpersistence.Open(ctx, postgres.DriverName, cfg.PostgresDSN, postgres.Driver)
		if err != nil {
			return nil, err
		}
		s.closers.Add(p)
		s.State = p
		s.Events = p

	case "redis":
		c := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s.closers.Add(c)

		if err := c.Ping(ctx).Err(); err != nil {
			return nil, err
		}

		s.State = &redispersistence.StateStore{Client: c}
		s.Events = projections
	}

	return s, nil
}
