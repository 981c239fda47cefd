package persistence

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/pkg/composables"
	"github.com/iota-uz/orgnav/pkg/configuration"
)

func TestEntityRepository_ReplaceAndLoad(t *testing.T) {
	pool := setupTestSchema(t)
	ctx := context.Background()
	repo := NewEntityRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	src, err := NewDatasetFile(filepath.Join("testdata", "org.yaml")).LoadDataset(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceDataset(ctx, src))

	got, err := repo.LoadDataset(ctx)
	require.NoError(t, err)
	require.Equal(t, src.Units, got.Units)
	require.Equal(t, src.Positions, got.Positions)
	require.Equal(t, src.People, got.People)
	require.Equal(t, src.Assignments, got.Assignments)

	// replacing is idempotent
	require.NoError(t, repo.ReplaceDataset(ctx, src))
	again, err := repo.LoadDataset(ctx)
	require.NoError(t, err)
	require.Len(t, again.Units, len(src.Units))
}

func TestEntityRepository_RejectsInvalidDataset(t *testing.T) {
	pool := setupTestSchema(t)
	ctx := context.Background()
	repo := NewEntityRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	bad := entities.NewDataset(nil, []entities.Position{{ID: 1, UnitID: 4, Name: "x"}}, nil, nil)
	err := repo.ReplaceDataset(ctx, bad)
	require.ErrorIs(t, err, ErrInvalidDataset)
}

func TestEntityRepository_UsesContextTransaction(t *testing.T) {
	pool := setupTestSchema(t)
	repo := NewEntityRepository(nil)
	ctx := composables.WithPool(context.Background(), pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	err := composables.InTx(ctx, func(txCtx context.Context) error {
		d, err := repo.LoadDataset(txCtx)
		if err != nil {
			return err
		}
		require.Empty(t, d.Units)
		return nil
	})
	require.NoError(t, err)
}

func TestEntityRepository_NoPool(t *testing.T) {
	_, err := NewEntityRepository(nil).LoadDataset(context.Background())
	require.ErrorIs(t, err, composables.ErrNoPool)
}

// setupTestSchema connects to the configured database and isolates the test in a throwaway schema.
func setupTestSchema(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	isCI := strings.TrimSpace(os.Getenv("CI")) != "" || strings.EqualFold(strings.TrimSpace(os.Getenv("GITHUB_ACTIONS")), "true")
	if !canDialPostgres(tb) {
		if isCI {
			tb.Fatalf("postgres is not reachable (DB_HOST/DB_PORT).")
		}
		tb.Skip("postgres is not reachable; skipping orgnav repository integration test")
	}

	ctx := context.Background()
	schema := "orgnav_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	admin, err := pgxpool.New(ctx, configuration.Use().Database.Opts)
	require.NoError(tb, err)
	tb.Cleanup(admin.Close)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(tb, err)
	tb.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(configuration.Use().Database.Opts)
	require.NoError(tb, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(tb, err)
	tb.Cleanup(pool.Close)
	return pool
}

func canDialPostgres(tb testing.TB) bool {
	tb.Helper()

	cfg := configuration.Use()
	host := strings.TrimSpace(cfg.Database.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Database.Port)
	if port == "" {
		port = "5432"
	}
	addr := net.JoinHostPort(host, port)

	dialer := &net.Dialer{Timeout: 250 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
