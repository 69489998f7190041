package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
)

// deckSize is the exact number of distinct cards every deck must hold.
const deckSize = 10

// DeckStore is the persistence contract for decks. The pgx implementation
// runs every multi-row mutation in a single transaction; either all rows
// become visible together or none do.
type DeckStore interface {
	GetDeckForUser(ctx context.Context, deckID, userID int64) (*models.Deck, error)
	ListDecksForUser(ctx context.Context, userID int64) ([]*models.Deck, error)
	CreateDeck(ctx context.Context, userID int64, name string, cardIDs []int64) (*models.Deck, error)
	UpdateDeck(ctx context.Context, deckID, userID int64, name *string, cardIDs []int64) (*models.Deck, error)
	DeleteDeck(ctx context.Context, deckID int64) error
}

// CardCatalog is the read-only card lookup collaborator.
type CardCatalog interface {
	ListCards(ctx context.Context) ([]*models.Card, error)
	CountExisting(ctx context.Context, cardIDs []int64) (int, error)
}

type DeckService struct {
	store   DeckStore
	catalog CardCatalog
}

func NewDeckService(store DeckStore, catalog CardCatalog) *DeckService {
	return &DeckService{store: store, catalog: catalog}
}

// "not found" and "not yours" are deliberately the same answer so one user
// cannot probe for another user's deck ids.
var errDeckNotFound = &RequestError{Status: 404, Message: "deck not found"}

// parseDeckID accepts positive integers only; anything else reads as 0,
// which callers report as not found.
func parseDeckID(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// parseName unmarshals a raw JSON name and trims it. ok is false when the
// value is not a string or blank after trimming.
func parseName(raw json.RawMessage) (string, bool) {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// validateCards checks shape, count, integer-ness, distinctness and catalog
// existence, in that order, failing fast on the first broken rule. On success
// it returns the deduplicated ids in their original order.
func (s *DeckService) validateCards(ctx context.Context, cards json.RawMessage) ([]int64, error) {
	// a JSON null unmarshals into a nil slice without error, so it needs
	// the same rejection as any other non-array value
	var elems []json.RawMessage
	if err := json.Unmarshal(cards, &elems); err != nil || elems == nil {
		return nil, badRequest("cards must be an array")
	}

	if len(elems) != deckSize {
		return nil, badRequest("deck must contain exactly 10 cards")
	}

	ids := make([]int64, 0, len(elems))
	for _, elem := range elems {
		var id int64
		if err := json.Unmarshal(elem, &id); err != nil || id <= 0 {
			return nil, badRequest("card IDs must be integers")
		}
		ids = append(ids, id)
	}

	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) != deckSize {
		return nil, badRequest("card IDs must all be different")
	}

	count, err := s.catalog.CountExisting(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to check card existence: %w", err)
	}
	if count != deckSize {
		return nil, badRequest("some cards do not exist")
	}

	return unique, nil
}

// CreateDeck validates the name and card list, then persists the deck and its
// ten memberships atomically, returning the hydrated result.
func (s *DeckService) CreateDeck(ctx context.Context, userID int64, name, cards json.RawMessage) (*models.Deck, error) {
	trimmed, ok := parseName(name)
	if len(name) == 0 || !ok {
		return nil, badRequest("missing name")
	}

	cardIDs, err := s.validateCards(ctx, cards)
	if err != nil {
		return nil, err
	}

	return s.store.CreateDeck(ctx, userID, trimmed, cardIDs)
}

// ListMine returns every deck owned by the user, oldest first.
func (s *DeckService) ListMine(ctx context.Context, userID int64) ([]*models.Deck, error) {
	return s.store.ListDecksForUser(ctx, userID)
}

func (s *DeckService) GetByID(ctx context.Context, userID int64, deckIDRaw string) (*models.Deck, error) {
	deckID := parseDeckID(deckIDRaw)
	if deckID == 0 {
		return nil, errDeckNotFound
	}

	deck, err := s.store.GetDeckForUser(ctx, deckID, userID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, errDeckNotFound
	}

	return deck, nil
}

// Update renames the deck and/or fully replaces its membership. Both changes
// land in the same transaction; a failure leaves the deck exactly as it was.
func (s *DeckService) Update(ctx context.Context, userID int64, deckIDRaw string, name, cards json.RawMessage) (*models.Deck, error) {
	deckID := parseDeckID(deckIDRaw)
	if deckID == 0 {
		return nil, errDeckNotFound
	}

	owned, err := s.store.GetDeckForUser(ctx, deckID, userID)
	if err != nil {
		return nil, err
	}
	if owned == nil {
		return nil, errDeckNotFound
	}

	if len(name) == 0 && len(cards) == 0 {
		return nil, badRequest("nothing to update")
	}

	var newName *string
	if len(name) != 0 {
		trimmed, ok := parseName(name)
		if !ok {
			return nil, badRequest("invalid name")
		}
		newName = &trimmed
	}

	var cardIDs []int64
	if len(cards) != 0 {
		cardIDs, err = s.validateCards(ctx, cards)
		if err != nil {
			return nil, err
		}
	}

	deck, err := s.store.UpdateDeck(ctx, deckID, userID, newName, cardIDs)
	if err != nil {
		return nil, err
	}
	// the deck can vanish between the ownership check and the transaction
	if deck == nil {
		return nil, errDeckNotFound
	}

	return deck, nil
}

// Remove deletes the deck and its memberships together. Delete is terminal;
// there is no soft delete.
func (s *DeckService) Remove(ctx context.Context, userID int64, deckIDRaw string) error {
	deckID := parseDeckID(deckIDRaw)
	if deckID == 0 {
		return errDeckNotFound
	}

	owned, err := s.store.GetDeckForUser(ctx, deckID, userID)
	if err != nil {
		return err
	}
	if owned == nil {
		return errDeckNotFound
	}

	return s.store.DeleteDeck(ctx, deckID)
}
