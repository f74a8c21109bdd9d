package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"shipquotes-service/internal/infrastructure/pg"
)

func withPostgres(t *testing.T) (*pg.DB, func()) {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set TESTCONTAINERS=1 to run containerized PG tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := postgres.RunContainer(ctx,
		postgres.WithDatabase("shipquotes"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pg.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pg.RunMigrations(ctx, db))

	teardown := func() {
		db.Close()
		_ = container.Terminate(context.Background())
	}
	return db, teardown
}

func seedRates(t *testing.T, db *pg.DB) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO countries (iso, name, name_official, sort_priority)
         VALUES ('US', 'United States', 'UNITED STATES OF AMERICA', 10),
                ('GB', 'United Kingdom', 'UNITED KINGDOM', 0)`,
		`INSERT INTO shipping_rates (name, rate, carrier, description)
         VALUES ('standard', 5.00, 'UPS', '3-5 business days'),
                ('express', 15.00, 'UPS', 'next day'),
                ('freight', 99.00, 'DHL', 'pallet freight')`,
		`INSERT INTO shipping_rate_countries (rate_name, country_iso)
         VALUES ('standard', 'US'), ('express', 'US'), ('standard', 'GB')`,
	}
	for _, stmt := range stmts {
		_, err := db.Pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
}
