package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(host string, port int) *Config {
	cfg := &Config{}
	cfg.Database.Host = host
	cfg.Database.Port = port
	cfg.Database.User = "arcade"
	cfg.Database.Password = "hunter2"
	cfg.Database.Name = "arcade_db"
	return cfg
}

func TestDatabaseCandidatesPrimaryFirst(t *testing.T) {
	cfg := testConfig("db.venue.lan", 5433)

	candidates := cfg.DatabaseCandidates()

	require.NotEmpty(t, candidates)
	assert.Equal(t, "db.venue.lan", candidates[0].Host)
	assert.Equal(t, 5433, candidates[0].Port)
	assert.Equal(t, "Configured (Primary)", candidates[0].Name)
	// All fallbacks follow, none matching the primary endpoint
	assert.Len(t, candidates, 1+len(DatabaseFallbacks))
}

func TestDatabaseCandidatesSkipDuplicateOfPrimary(t *testing.T) {
	f := DatabaseFallbacks[0]
	cfg := testConfig(f.Host, f.Port)

	candidates := cfg.DatabaseCandidates()

	assert.Len(t, candidates, len(DatabaseFallbacks))
	for _, c := range candidates[1:] {
		assert.False(t, c.Host == f.Host && c.Port == f.Port)
	}
}

func TestDatabaseCandidatesCarryConfiguredPassword(t *testing.T) {
	cfg := testConfig("db.venue.lan", 5433)

	for _, c := range cfg.DatabaseCandidates() {
		assert.Equal(t, "hunter2", c.Password)
		assert.Contains(t, c.ConnectionString(), ":hunter2@")
	}
}
