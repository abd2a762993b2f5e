package db

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	NetworkIDKey contextKey = "network_id"
	DBConnKey    contextKey = "db_conn"
)

var networkIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// NetworkMiddleware resolves which care network a request belongs to and
// pins a schema-scoped connection into the request context. Each network
// (a regional federation of hospitals and donor groups) lives in its own
// Postgres schema.
func NetworkMiddleware(pool *pgxpool.Pool, defaultNetwork string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			networkID := extractNetworkID(c, defaultNetwork)

			if !networkIDPattern.MatchString(networkID) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid network identifier")
			}

			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer conn.Release()

			schema := fmt.Sprintf("network_%s", networkID)
			_, err = conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, shared, public", schema))
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "network resolution failed")
			}

			ctx = context.WithValue(ctx, NetworkIDKey, networkID)
			ctx = context.WithValue(ctx, DBConnKey, conn)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("network_id", networkID)
			c.Set("db", conn)

			return next(c)
		}
	}
}

func extractNetworkID(c echo.Context, defaultNetwork string) string {
	if nid, ok := c.Get("jwt_network_id").(string); ok && nid != "" {
		return nid
	}
	if nid := c.Request().Header.Get("X-Network-ID"); nid != "" {
		return nid
	}
	if nid := c.QueryParam("network_id"); nid != "" {
		return nid
	}
	return defaultNetwork
}

// ConnFromContext retrieves the network-scoped database connection from
// context. Repositories fall back to the shared pool when it is absent.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// NetworkFromContext retrieves the care-network id from context.
func NetworkFromContext(ctx context.Context) string {
	nid, _ := ctx.Value(NetworkIDKey).(string)
	return nid
}

// CreateNetworkSchema creates the schema for a new care network and runs the
// migrations against it. Migrations are skipped when migrationsDir is empty.
func CreateNetworkSchema(ctx context.Context, pool *pgxpool.Pool, networkID string, migrationsDir string) error {
	if !networkIDPattern.MatchString(networkID) {
		return fmt.Errorf("invalid network identifier: %s", networkID)
	}

	schema := fmt.Sprintf("network_%s", networkID)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema))
	if err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if migrationsDir != "" {
		migrator := NewMigrator(pool, migrationsDir)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}
