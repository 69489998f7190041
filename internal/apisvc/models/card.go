package models

// Card is a catalog entry. The catalog is read-only for this service;
// decks reference cards by id only.
type Card struct {
	ID            int64  `json:"id"` // Primary key
	Name          string `json:"name"`
	HP            int    `json:"hp"`
	Attack        int    `json:"attack"`
	Type          string `json:"type"`
	PokedexNumber int    `json:"pokedexNumber"` // Catalog ordering
	ImageURL      string `json:"imageUrl"`
}
