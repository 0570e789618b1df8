// Package dbtest connects tests to a live Postgres named by TEST_DSN.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"hourskill/internal/db"
)

// suiteLockKey serializes every package that shares TEST_DSN. go test runs
// package binaries in parallel and each one truncates the same tables.
const suiteLockKey int64 = 0x686f7572

// Open returns a migrated, empty database or skips the test when TEST_DSN
// is unset or unreachable. The caller holds the suite lock until the test
// ends.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DSN not set")
	}

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	lock(t, conn)
	require.NoError(t, db.RunMigrations(conn, migrationsDir()))
	Truncate(t, conn)
	return conn
}

// Truncate empties every table. Ledger rows reject DELETE, so TRUNCATE is
// the only way to reset them.
func Truncate(t *testing.T, conn *sqlx.DB) {
	t.Helper()
	_, err := conn.Exec(`TRUNCATE transactions, watch_sessions, videos, wallets, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

// lock takes a session advisory lock on a dedicated connection and releases
// it in cleanup.
func lock(t *testing.T, conn *sqlx.DB) {
	t.Helper()

	ctx := context.Background()
	held, err := conn.Conn(ctx)
	require.NoError(t, err)

	if _, err := held.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, suiteLockKey); err != nil {
		held.Close()
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		held.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, suiteLockKey)
		held.Close()
	})
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
