package service

import (
	"context"

	"github.com/updown-labs/updown-services/internal/gamesvc/models"
)

type PriceService struct {
	priceStore PriceReader
}

func NewPriceService(priceStore PriceReader) *PriceService {
	return &PriceService{priceStore: priceStore}
}

// Latest returns the current price sample for the feed bootstrap endpoint.
func (s *PriceService) Latest(ctx context.Context) (*models.PriceSample, error) {
	sample, err := s.priceStore.Get(ctx)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, ErrPriceUnavailable
	}

	return sample, nil
}
