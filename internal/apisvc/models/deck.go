package models

// Deck is a named collection of exactly 10 distinct cards owned by one user.
// Responses are always hydrated: each membership carries the full card data.
type Deck struct {
	ID     int64      `json:"id"` // Primary key, also the creation order
	UserID int64      `json:"userId"`
	Name   string     `json:"name"`
	Cards  []DeckCard `json:"cards"`
}

// DeckCard links a deck to one catalog card.
type DeckCard struct {
	DeckID int64 `json:"deckId"`
	CardID int64 `json:"cardId"`
	Card   *Card `json:"card,omitempty"`
}
