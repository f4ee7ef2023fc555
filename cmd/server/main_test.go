package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/kuitang/noteful/internal/config"
	"github.com/kuitang/noteful/internal/db"
	"github.com/kuitang/noteful/internal/obs"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	err := run(context.Background(), []string{"--env-file", ""})

	var ve *config.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
}

func TestRun_Help(t *testing.T) {
	require.NoError(t, run(context.Background(), []string{"-h"}))
}

func TestRun_InitSchemaServesAndShutsDown(t *testing.T) {
	restore := obs.SetOutputForTests(io.Discard)
	defer restore()

	path := filepath.Join(t.TempDir(), "noteful.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_PATH", path)
	t.Setenv("DATABASE_KEY", "")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:0")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, []string{"--init-schema", "--env-file", ""}) }()

	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	store, err := db.OpenSQLite(path, "", 1)
	require.NoError(t, err)
	defer store.Close()
	var tables int
	require.NoError(t, store.DB().QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('folders', 'notes')").Scan(&tables))
	require.Equal(t, 2, tables)
}
