package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrationsSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"002_machines.sql":   {Data: []byte("CREATE TABLE machines ();")},
		"001_users.sql":      {Data: []byte("CREATE TABLE users ();")},
		"003_reset_dev.sql":  {Data: []byte("TRUNCATE users;")},
		"notes.md":           {Data: []byte("not a migration")},
		"004_snapshots.sql":  {Data: []byte("CREATE TABLE snapshots ();")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{"001_users.sql": true})
	require.NoError(t, err)

	// Applied and reset files are excluded, the rest sorted by filename
	assert.Equal(t, []string{"002_machines.sql", "004_snapshots.sql"}, pending)
}

func TestPendingMigrationsNothingApplied(t *testing.T) {
	fsys := fstest.MapFS{
		"001_users.sql": {Data: []byte("CREATE TABLE users ();")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_users.sql"}, pending)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	m := NewMigrator(nil)

	pending, err := pendingMigrations(m.fsys, map[string]bool{})
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "001_create_users.sql", pending[0])
}
