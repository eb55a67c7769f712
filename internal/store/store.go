// Package store is the hand-written pgx persistence layer. Services depend
// on narrow interfaces they declare themselves; this package satisfies them
// against PostgreSQL.
package store

import (
	"context"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxuuid "github.com/vgarvardt/pgx-google-uuid/v5"
)

// Store bundles the repositories over one connection pool.
type Store struct {
	Pool *pgxpool.Pool
}

// New wraps the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// RegisterTypes installs the decimal and uuid codecs on a new connection.
// Wire it into pgxpool.Config.AfterConnect.
func RegisterTypes(_ context.Context, conn *pgx.Conn) error {
	pgxdecimal.Register(conn.TypeMap())
	pgxuuid.Register(conn.TypeMap())
	return nil
}
