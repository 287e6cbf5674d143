package service

import (
	"context"
	"fmt"

	"stacktrack/models"
)

// referenceService implements the ReferenceService interface
type referenceService struct {
	uowFactory UnitOfWorkFactory
}

// NewReferenceService creates a new reference data service
func NewReferenceService(uowFactory UnitOfWorkFactory) ReferenceService {
	return &referenceService{
		uowFactory: uowFactory,
	}
}

// PokerSites returns active sites ordered by name
func (s *referenceService) PokerSites(ctx context.Context) ([]*models.PokerSite, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sites, err := uow.ReferenceRepository().ActivePokerSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get poker sites: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sites, nil
}

// GameTypes returns all game types ordered by name
func (s *referenceService) GameTypes(ctx context.Context) ([]*models.GameType, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gameTypes, err := uow.ReferenceRepository().GameTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get game types: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return gameTypes, nil
}
