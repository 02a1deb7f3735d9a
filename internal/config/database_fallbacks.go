package config

import "fmt"

// Database fallback configuration for the venue edge box. The primary lives
// in the cluster; the local replica is tried when the primary is unreachable.
var DatabaseFallbacks = []DatabaseConfig{
	{
		Name:     "Cluster (Primary)",
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Database: "arcade_db",
	},
	{
		Name:     "Local Replica",
		Host:     "localhost",
		Port:     5434,
		User:     "postgres",
		Database: "arcade_db",
	},
}

type DatabaseConfig struct {
	Name     string
	Host     string
	Port     int
	User     string
	Password string // Will be set dynamically
	Database string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

// DatabaseCandidates returns the configured database first, then the
// fallbacks, skipping any fallback that duplicates the primary endpoint.
// All candidates share the configured password.
func (c *Config) DatabaseCandidates() []DatabaseConfig {
	primary := DatabaseConfig{
		Name:     "Configured (Primary)",
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		User:     c.Database.User,
		Password: c.Database.Password,
		Database: c.Database.Name,
	}
	candidates := []DatabaseConfig{primary}
	for _, f := range DatabaseFallbacks {
		if f.Host == primary.Host && f.Port == primary.Port {
			continue
		}
		f.Password = c.Database.Password
		candidates = append(candidates, f)
	}
	return candidates
}
