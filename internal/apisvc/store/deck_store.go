package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the hydration
// queries can run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DeckStore struct {
	db *pgxpool.Pool
}

func NewDeckStore(db *pgxpool.Pool) *DeckStore {
	return &DeckStore{db: db}
}

// GetDeckForUser returns the hydrated deck scoped to its owner, or (nil, nil)
// when no such deck exists for that user.
func (s *DeckStore) GetDeckForUser(ctx context.Context, deckID, userID int64) (*models.Deck, error) {
	return s.fetchDeck(ctx, s.db, deckID, userID)
}

// ListDecksForUser returns every deck owned by the user, hydrated, ordered by
// ascending id. An empty result is an empty slice, not an error.
func (s *DeckStore) ListDecksForUser(ctx context.Context, userID int64) ([]*models.Deck, error) {
	query := `
		SELECT id, user_id, name
		FROM decks
		WHERE user_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := []*models.Deck{}
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name); err != nil {
			return nil, err
		}
		decks = append(decks, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range decks {
		cards, err := s.fetchDeckCards(ctx, s.db, d.ID)
		if err != nil {
			return nil, err
		}
		d.Cards = cards
	}

	return decks, nil
}

// CreateDeck inserts the deck row and its memberships in one transaction and
// reads the hydrated deck back before committing. On any error the whole
// transaction rolls back, so a partial deck is never observable.
func (s *DeckStore) CreateDeck(ctx context.Context, userID int64, name string, cardIDs []int64) (*models.Deck, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var deckID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO decks (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, userID, name).Scan(&deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	if err := insertDeckCards(ctx, tx, deckID, cardIDs); err != nil {
		return nil, err
	}

	deck, err := s.fetchDeck(ctx, tx, deckID, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deck, nil
}

// UpdateDeck renames the deck and/or fully replaces its membership, in one
// transaction. A nil name leaves the name alone; nil cardIDs leave the
// membership alone. Replacement deletes every existing row first, never a
// partial merge.
func (s *DeckStore) UpdateDeck(ctx context.Context, deckID, userID int64, name *string, cardIDs []int64) (*models.Deck, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if name != nil {
		_, err := tx.Exec(ctx, `UPDATE decks SET name = $1 WHERE id = $2`, *name, deckID)
		if err != nil {
			return nil, fmt.Errorf("failed to rename deck: %w", err)
		}
	}

	if cardIDs != nil {
		_, err := tx.Exec(ctx, `DELETE FROM deck_cards WHERE deck_id = $1`, deckID)
		if err != nil {
			return nil, fmt.Errorf("failed to clear deck cards: %w", err)
		}
		if err := insertDeckCards(ctx, tx, deckID, cardIDs); err != nil {
			return nil, err
		}
	}

	deck, err := s.fetchDeck(ctx, tx, deckID, userID)
	if err != nil {
		return nil, err
	}
	// deck gone since the caller's ownership check: roll back, report not found
	if deck == nil {
		return nil, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deck, nil
}

// DeleteDeck removes the memberships and the deck row together.
func (s *DeckStore) DeleteDeck(ctx context.Context, deckID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM deck_cards WHERE deck_id = $1`, deckID); err != nil {
		return fmt.Errorf("failed to delete deck cards: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM decks WHERE id = $1`, deckID); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *DeckStore) fetchDeck(ctx context.Context, q querier, deckID, userID int64) (*models.Deck, error) {
	query := `
		SELECT id, user_id, name
		FROM decks
		WHERE id = $1 AND user_id = $2
	`

	d := &models.Deck{}
	err := q.QueryRow(ctx, query, deckID, userID).Scan(&d.ID, &d.UserID, &d.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // deck not found for this user
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	cards, err := s.fetchDeckCards(ctx, q, deckID)
	if err != nil {
		return nil, err
	}
	d.Cards = cards

	return d, nil
}

func (s *DeckStore) fetchDeckCards(ctx context.Context, q querier, deckID int64) ([]models.DeckCard, error) {
	query := `
		SELECT dc.deck_id, dc.card_id,
		       c.id, c.name, c.hp, c.attack, c.type, c.pokedex_number, c.image_url
		FROM deck_cards dc
		JOIN cards c ON c.id = dc.card_id
		WHERE dc.deck_id = $1
		ORDER BY dc.card_id ASC
	`

	rows, err := q.Query(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}
	defer rows.Close()

	cards := []models.DeckCard{}
	for rows.Next() {
		var dc models.DeckCard
		var c models.Card
		err := rows.Scan(
			&dc.DeckID,
			&dc.CardID,
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
		dc.Card = &c
		cards = append(cards, dc)
	}

	return cards, rows.Err()
}

func insertDeckCards(ctx context.Context, tx pgx.Tx, deckID int64, cardIDs []int64) error {
	batch := &pgx.Batch{}
	for _, cardID := range cardIDs {
		batch.Queue(`INSERT INTO deck_cards (deck_id, card_id) VALUES ($1, $2)`, deckID, cardID)
	}

	br := tx.SendBatch(ctx, batch)
	for range cardIDs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert deck card: %w", err)
		}
	}

	return br.Close()
}
