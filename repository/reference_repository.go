package repository

import (
	"context"
	"fmt"

	"stacktrack/database"
	"stacktrack/models"
)

// ReferenceRepository implements the service.ReferenceRepository interface
type ReferenceRepository struct {
	q queryable
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(db *database.DB) *ReferenceRepository {
	return &ReferenceRepository{q: db.Pool}
}

// newReferenceRepositoryWithTx creates a new reference data repository with a transaction
func newReferenceRepositoryWithTx(tx queryable) *ReferenceRepository {
	return &ReferenceRepository{q: tx}
}

// ActivePokerSites returns active sites ordered by name
func (r *ReferenceRepository) ActivePokerSites(ctx context.Context) ([]*models.PokerSite, error) {
	query := `
		SELECT id, name, url, active
		FROM poker_sites
		WHERE active = true
		ORDER BY name ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get poker sites: %w", err)
	}
	defer rows.Close()

	var sites []*models.PokerSite
	for rows.Next() {
		var site models.PokerSite
		if err := rows.Scan(&site.ID, &site.Name, &site.URL, &site.Active); err != nil {
			return nil, fmt.Errorf("failed to scan poker site: %w", err)
		}
		sites = append(sites, &site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate poker sites: %w", err)
	}

	return sites, nil
}

// GameTypes returns all game types ordered by name
func (r *ReferenceRepository) GameTypes(ctx context.Context) ([]*models.GameType, error) {
	query := `
		SELECT id, name, short_name
		FROM game_types
		ORDER BY name ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get game types: %w", err)
	}
	defer rows.Close()

	var gameTypes []*models.GameType
	for rows.Next() {
		var gameType models.GameType
		if err := rows.Scan(&gameType.ID, &gameType.Name, &gameType.ShortName); err != nil {
			return nil, fmt.Errorf("failed to scan game type: %w", err)
		}
		gameTypes = append(gameTypes, &gameType)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game types: %w", err)
	}

	return gameTypes, nil
}
