package service

import (
	"context"
	"fmt"
	"time"

	"stacktrack/models"

	"github.com/shopspring/decimal"
)

// analyticsService implements the AnalyticsService interface. Everything here
// is read-side; it never mutates the ledger or the sessions.
type analyticsService struct {
	uowFactory UnitOfWorkFactory
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(uowFactory UnitOfWorkFactory) AnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
	}
}

// DashboardStats aggregates all completed sessions for the dashboard
func (s *analyticsService) DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.AnalyticsRepository().DashboardStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}

// PerformanceMetrics summarizes completed sessions inside the lookback
// window. WinRate here is average profit per session.
func (s *analyticsService) PerformanceMetrics(ctx context.Context, userID string, timeframe Timeframe) (*models.PerformanceMetrics, error) {
	cutoff, err := timeframeCutoff(timeframe, time.Now())
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sessions, err := uow.SessionRepository().GetCompletedSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	rebuySums, err := s.rebuySums(ctx, uow, sessions)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics := &models.PerformanceMetrics{
		TotalSessions: len(sessions),
		NetProfit:     decimal.Zero,
	}
	for _, session := range sessions {
		profit := sessionProfit(session, rebuySums[session.ID])
		metrics.NetProfit = metrics.NetProfit.Add(profit)
		switch profit.Sign() {
		case 1:
			metrics.WinningSessions++
		case -1:
			metrics.LosingSessions++
		}
	}

	if metrics.TotalSessions > 0 {
		metrics.WinRate = metrics.NetProfit.InexactFloat64() / float64(metrics.TotalSessions)
	}
	if metrics.LosingSessions > 0 {
		metrics.WinLossRatio = float64(metrics.WinningSessions) / float64(metrics.LosingSessions)
	} else {
		metrics.WinLossRatio = float64(metrics.WinningSessions)
	}

	return metrics, nil
}

// BankrollGrowth replays the transaction log from zero, one point per entry
func (s *analyticsService) BankrollGrowth(ctx context.Context, userID string) ([]*models.BankrollGrowthPoint, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bankroll, err := uow.BankrollRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll: %w", err)
	}
	if bankroll == nil {
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return []*models.BankrollGrowthPoint{}, nil
	}

	transactions, err := uow.BankrollTransactionRepository().GetAllAscending(ctx, bankroll.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction log: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	points := make([]*models.BankrollGrowthPoint, 0, len(transactions))
	balance := decimal.Zero
	for _, transaction := range transactions {
		balance = balance.Add(transaction.SignedAmount())
		points = append(points, &models.BankrollGrowthPoint{
			Date:    transaction.Timestamp,
			Balance: balance,
			Type:    transaction.Type,
			Amount:  transaction.Amount,
			Notes:   transaction.Notes,
		})
	}

	return points, nil
}

// SessionPerformance returns per-session profitability within the window,
// buy-in inflated by rebuys
func (s *analyticsService) SessionPerformance(ctx context.Context, userID string, windowDays int) ([]*models.SessionPerformance, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -windowDays)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sessions, err := uow.SessionRepository().GetCompletedSince(ctx, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	rebuySums, err := s.rebuySums(ctx, uow, sessions)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	performance := make([]*models.SessionPerformance, 0, len(sessions))
	for _, session := range sessions {
		invested := session.BuyIn.Add(rebuySums[session.ID])
		cashOut := decimal.Zero
		if session.CashOut != nil {
			cashOut = *session.CashOut
		}
		profit := cashOut.Sub(invested)
		hours := session.Duration().Hours()

		record := &models.SessionPerformance{
			SessionID:     session.ID,
			Date:          session.StartTime,
			Stakes:        session.Stakes,
			BuyIn:         invested,
			CashOut:       cashOut,
			Profit:        profit,
			DurationHours: hours,
		}
		if hours > 0 {
			record.HourlyRate = profit.InexactFloat64() / hours
		}
		performance = append(performance, record)
	}

	return performance, nil
}

// SessionStats runs a single pass over all completed sessions. Sessions with
// no recorded cash-out contribute nothing to the sums but still count toward
// the averages, and profit counts the buy-in only.
func (s *analyticsService) SessionStats(ctx context.Context, userID string) (*models.SessionStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sessions, err := uow.SessionRepository().GetCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	stats := models.ZeroSessionStats()
	stats.TotalSessions = len(sessions)
	winning := 0
	for _, session := range sessions {
		if session.CashOut == nil {
			continue
		}
		profit := session.CashOut.Sub(session.BuyIn)

		stats.TotalProfit = stats.TotalProfit.Add(profit)
		stats.TotalHours += session.Duration().Hours()
		if profit.IsPositive() {
			winning++
		}
		if profit.GreaterThan(stats.BiggestWin) {
			stats.BiggestWin = profit
		}
		if profit.LessThan(stats.BiggestLoss) {
			stats.BiggestLoss = profit
		}
	}

	if stats.TotalSessions > 0 {
		stats.AvgProfit = stats.TotalProfit.DivRound(decimal.NewFromInt(int64(stats.TotalSessions)), 2)
		stats.WinRate = float64(winning) / float64(stats.TotalSessions) * 100
		stats.AvgSessionLength = stats.TotalHours / float64(stats.TotalSessions)
	}

	return stats, nil
}

// rebuySums fetches rebuy totals for the given sessions in one query
func (s *analyticsService) rebuySums(ctx context.Context, uow UnitOfWork, sessions []*models.Session) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	sums, err := uow.SessionRebuyRepository().SumsForSessions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to sum rebuys: %w", err)
	}
	return sums, nil
}

// sessionProfit is cash-out (zero when unrecorded) minus buy-in and rebuys
func sessionProfit(session *models.Session, rebuys decimal.Decimal) decimal.Decimal {
	cashOut := decimal.Zero
	if session.CashOut != nil {
		cashOut = *session.CashOut
	}
	return cashOut.Sub(session.BuyIn.Add(rebuys))
}

// timeframeCutoff resolves a lookback window to its starting instant
func timeframeCutoff(timeframe Timeframe, now time.Time) (time.Time, error) {
	switch timeframe {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7), nil
	case TimeframeMonth:
		return now.AddDate(0, -1, 0), nil
	case TimeframeYear:
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, NewValidationError("timeframe", "must be week, month or year")
	}
}
