package repository

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectTimeout    = 5 * time.Second
	maxConnIdleTime   = 30 * time.Second
	healthCheckPeriod = 30 * time.Second
	minConns          = 3
)

// Database is the part of a pgx pool the booking queries need.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ConnString builds the PostgreSQL URL for the salon database. Credentials are escaped,
// so passwords may contain URL delimiters.
func ConnString(host, port, username, password, dbName string) string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(username, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": []string{"disable"}}.Encode(),
	}
	return dsn.String()
}

// NewDatabase opens a connection pool to the salon database and checks it is reachable.
func NewDatabase(host, port, username, password, dbName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(host, port, username, password, dbName))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MinConns = minConns
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection to PostgreSQL: %w", err)
	}

	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL DB: %w", err)
	}

	return dbpool, nil
}
