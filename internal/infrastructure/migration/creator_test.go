package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/erp/settlement/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add ledger index", "add_ledger_index"},
		{"Add-Ledger-Index", "add_ledger_index"},
		{"ADD__LEDGER__INDEX", "add_ledger_index"},
		{"credit notes 2", "credit_notes_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading_and_trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration starts at one", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		mf, err := CreateMigration(dir, "create ledger", "Ledger tables")
		require.NoError(t, err)
		assert.Equal(t, uint(1), mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_create_ledger.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_create_ledger.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: create_ledger")
		assert.Contains(t, string(up), "Ledger tables")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "(Rollback)")
	})

	t.Run("continues after the highest version", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_seed.up.sql"), []byte("--"), 0o644))

		mf, err := CreateMigration(dir, "next", "")
		require.NoError(t, err)
		assert.Equal(t, uint(8), mf.Version)
		assert.Equal(t, "000008_next.up.sql", filepath.Base(mf.UpPath))
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("orders by version and pairs files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000002_add_index.up.sql":   {Data: []byte("--")},
			"000001_init.up.sql":        {Data: []byte("--")},
			"000001_init.down.sql":      {Data: []byte("--")},
			"README.md":                 {Data: []byte("docs")},
			"notes_without_version.sql": {Data: []byte("--")},
			"archive/000003_old.up.sql": {Data: []byte("--")},
		}

		list, err := ListMigrations(fsys)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, MigrationInfo{Version: 1, Name: "init", HasDown: true}, list[0])
		assert.Equal(t, MigrationInfo{Version: 2, Name: "add_index", HasDown: false}, list[1])
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("embedded schema is complete", func(t *testing.T) {
		list, err := ListMigrations(migrations.FS)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, uint(1), list[0].Version)
		for _, m := range list {
			assert.True(t, m.HasDown, "migration %d has no rollback", m.Version)
		}
	})
}
