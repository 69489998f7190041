package store

import (
	"context"
	"fmt"

	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CardStore struct {
	db *pgxpool.Pool
}

func NewCardStore(db *pgxpool.Pool) *CardStore {
	return &CardStore{db: db}
}

// ListCards returns the whole catalog ordered by pokedex number.
func (s *CardStore) ListCards(ctx context.Context) ([]*models.Card, error) {
	query := `
		SELECT id, name, hp, attack, type, pokedex_number, image_url
		FROM cards
		ORDER BY pokedex_number ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		var c models.Card
		err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.HP,
			&c.Attack,
			&c.Type,
			&c.PokedexNumber,
			&c.ImageURL,
		)
		if err != nil {
			return nil, err
		}
		cards = append(cards, &c)
	}

	return cards, rows.Err()
}

// CountExisting reports how many of the candidate card ids exist in the catalog.
func (s *CardStore) CountExisting(ctx context.Context, cardIDs []int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM cards
		WHERE id = ANY($1)
	`

	var count int
	err := s.db.QueryRow(ctx, query, cardIDs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}

	return count, nil
}

// InsertCards bulk-loads catalog entries, used by the seeder.
func (s *CardStore) InsertCards(ctx context.Context, cards []*models.Card) error {
	query := `
		INSERT INTO cards (name, hp, attack, type, pokedex_number, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, c := range cards {
		_, err := s.db.Exec(ctx, query, c.Name, c.HP, c.Attack, c.Type, c.PokedexNumber, c.ImageURL)
		if err != nil {
			return fmt.Errorf("failed to insert card %s: %w", c.Name, err)
		}
	}

	return nil
}
