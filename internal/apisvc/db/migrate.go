package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		hp INT NOT NULL,
		attack INT NOT NULL,
		type TEXT NOT NULL,
		pokedex_number INT NOT NULL,
		image_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS decks (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users (id),
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS deck_cards (
		deck_id BIGINT NOT NULL REFERENCES decks (id),
		card_id BIGINT NOT NULL REFERENCES cards (id),
		PRIMARY KEY (deck_id, card_id)
	)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
