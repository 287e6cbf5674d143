package repository

import (
	"context"
	"fmt"

	"stacktrack/database"
	"stacktrack/models"

	"github.com/shopspring/decimal"
)

// AnalyticsRepository implements the service.AnalyticsRepository interface.
// Aggregation happens in SQL so the dashboard stays one round trip.
type AnalyticsRepository struct {
	q queryable
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *database.DB) *AnalyticsRepository {
	return &AnalyticsRepository{q: db.Pool}
}

// newAnalyticsRepositoryWithTx creates a new analytics repository with a transaction
func newAnalyticsRepositoryWithTx(tx queryable) *AnalyticsRepository {
	return &AnalyticsRepository{q: tx}
}

// DashboardStats aggregates all completed sessions for the user. Profit per
// session counts rebuys as part of the invested amount, and a missing
// cash-out counts as zero. BiggestWin is the raw best session, negative when
// every session lost.
func (r *AnalyticsRepository) DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	query := `
		WITH completed AS (
			SELECT
				COALESCE(s.cash_out, 0) - (s.buy_in + COALESCE(r.total, 0)) AS profit,
				EXTRACT(EPOCH FROM (s.end_time - s.start_time)) / 3600 AS hours,
				s.end_time
			FROM sessions s
			LEFT JOIN (
				SELECT session_id, SUM(amount) AS total
				FROM session_rebuys
				GROUP BY session_id
			) r ON r.session_id = s.id
			WHERE s.user_id = $1 AND s.status = 'completed'
		)
		SELECT
			COUNT(*),
			COALESCE(SUM(profit), 0)::text,
			COALESCE(MAX(profit), 0)::text,
			COALESCE(MAX(hours), 0),
			COALESCE(SUM(hours), 0),
			COUNT(*) FILTER (WHERE profit > 0),
			COALESCE(SUM(profit) FILTER (WHERE end_time >= NOW() - INTERVAL '30 days'), 0)::text
		FROM completed
	`

	var (
		totalSessions   int
		totalProfit     string
		biggestWin      string
		longestSession  float64
		totalHours      float64
		winningSessions int
		lastMonthProfit string
	)

	err := r.q.QueryRow(ctx, query, userID).Scan(
		&totalSessions,
		&totalProfit,
		&biggestWin,
		&longestSession,
		&totalHours,
		&winningSessions,
		&lastMonthProfit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats for user %s: %w", userID, err)
	}

	if totalSessions == 0 {
		return models.ZeroDashboardStats(), nil
	}

	stats := models.ZeroDashboardStats()
	stats.TotalSessions = totalSessions
	stats.LongestSession = longestSession
	stats.TotalHoursPlayed = totalHours

	stats.ProfitLoss, err = parseDecimal(totalProfit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total profit for user %s: %w", userID, err)
	}
	stats.BiggestWin, err = parseDecimal(biggestWin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse biggest win for user %s: %w", userID, err)
	}
	stats.LastMonthProfit, err = parseDecimal(lastMonthProfit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last month profit for user %s: %w", userID, err)
	}

	stats.AverageProfit = stats.ProfitLoss.DivRound(decimal.NewFromInt(int64(totalSessions)), 2)
	stats.WinningPercentage = float64(winningSessions) / float64(totalSessions) * 100
	if totalHours > 0 {
		stats.WinRate = stats.ProfitLoss.InexactFloat64() / totalHours
	}

	return stats, nil
}
