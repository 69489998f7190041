package service

import (
	"context"

	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
)

type CardService struct {
	catalog CardCatalog
}

func NewCardService(catalog CardCatalog) *CardService {
	return &CardService{catalog: catalog}
}

func (s *CardService) ListCards(ctx context.Context) ([]*models.Card, error) {
	return s.catalog.ListCards(ctx)
}
