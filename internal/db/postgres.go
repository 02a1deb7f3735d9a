package db

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"arcade-backend/internal/config"
)

// Connect tries the configured database first, then each fallback in order,
// returning the first pool that answers a ping.
func Connect(cfg *config.Config) *pgxpool.Pool {
	candidates := cfg.DatabaseCandidates()

	for _, c := range candidates {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := pgxpool.New(ctx, c.ConnectionString())
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				cancel()
				log.Printf("[DB] Connected to %s (%s:%d)", c.Name, c.Host, c.Port)
				return pool
			}
			pool.Close()
		}
		cancel()
		log.Printf("[DB] %s unreachable: %v", c.Name, err)
	}

	log.Fatalf("[DB] No reachable database among %d candidates", len(candidates))
	return nil
}
