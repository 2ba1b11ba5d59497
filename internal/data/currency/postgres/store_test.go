package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"

	"fxpub/internal/data/currency/postgres"
	"fxpub/internal/data/currency/tests"
	"fxpub/internal/platform/db"
)

var (
	pgSetupOnce sync.Once

	pgContainer *tcpg.PostgresContainer
	pgConnStr   string
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgSetupOnce.Do(func() {
		startPostgres(t)
	})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func startPostgres(t *testing.T) {
	ctx := context.Background()
	pg, err := tcpg.Run(ctx,
		"postgres:16-alpine",
		tcpg.WithDatabase("postgres"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		pool, err := pgxpool.New(pingCtx, dsn)
		if err != nil {
			return false
		}
		defer pool.Close()
		return pool.Ping(pingCtx) == nil
	}, 15*time.Second, 500*time.Millisecond)

	require.NoError(t, db.Migrate(ctx, dsn))

	pgContainer = pg
	pgConnStr = dsn
}

func TestCurrencyPostgresStore(t *testing.T) {
	pool := setupPostgres(t)
	testStore := postgres.New(pool)
	teardown := func() {
		_, err := pool.Exec(context.Background(), `truncate table fx_currency_catalog`)
		require.NoError(t, err)
	}
	tests.RunTests(t, testStore, teardown)
}
