package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the dashboard summary over all completed sessions.
// WinRate is profit per hour, not per session; WinningPercentage is the share
// of sessions where cash-out beat total invested.
type DashboardStats struct {
	TotalSessions     int             `json:"totalSessions"`
	WinRate           float64         `json:"winRate"`
	BiggestWin        decimal.Decimal `json:"biggestWin"`
	LongestSession    float64         `json:"longestSession"`
	ProfitLoss        decimal.Decimal `json:"profitLoss"`
	AverageProfit     decimal.Decimal `json:"averageProfit"`
	WinningPercentage float64         `json:"winningPercentage"`
	TotalHoursPlayed  float64         `json:"totalHoursPlayed"`
	LastMonthProfit   decimal.Decimal `json:"lastMonthProfit"`
}

// PerformanceMetrics summarizes completed sessions inside a lookback window.
// WinRate here is average profit per session, matching the dashboard snapshot.
type PerformanceMetrics struct {
	TotalSessions   int             `json:"totalSessions"`
	NetProfit       decimal.Decimal `json:"netProfit"`
	WinRate         float64         `json:"winRate"`
	WinningSessions int             `json:"winningSessions"`
	LosingSessions  int             `json:"losingSessions"`
	WinLossRatio    float64         `json:"winLossRatio"`
}

// BankrollGrowthPoint is one step of the balance replayed from the
// transaction log, in timestamp order
type BankrollGrowthPoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
	Type    TransactionType `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   *string         `json:"notes,omitempty"`
}

// SessionPerformance is a per-session profitability record, buy-in inflated
// by the session's rebuys
type SessionPerformance struct {
	SessionID     string          `json:"sessionId"`
	Date          time.Time       `json:"date"`
	Stakes        string          `json:"stakes"`
	BuyIn         decimal.Decimal `json:"buyIn"`
	CashOut       decimal.Decimal `json:"cashOut"`
	Profit        decimal.Decimal `json:"profit"`
	DurationHours float64         `json:"durationHours"`
	HourlyRate    float64         `json:"hourlyRate"`
}

// SessionStats aggregates all completed sessions in one pass
type SessionStats struct {
	TotalSessions    int             `json:"totalSessions"`
	TotalProfit      decimal.Decimal `json:"totalProfit"`
	AvgProfit        decimal.Decimal `json:"avgProfit"`
	WinRate          float64         `json:"winRate"`
	BiggestWin       decimal.Decimal `json:"biggestWin"`
	BiggestLoss      decimal.Decimal `json:"biggestLoss"`
	TotalHours       float64         `json:"totalHours"`
	AvgSessionLength float64         `json:"avgSessionLength"`
}

// ZeroDashboardStats is the all-zero result for users with no completed
// sessions; decimals are explicit so JSON shows 0 rather than null
func ZeroDashboardStats() *DashboardStats {
	return &DashboardStats{
		BiggestWin:      decimal.Zero,
		ProfitLoss:      decimal.Zero,
		AverageProfit:   decimal.Zero,
		LastMonthProfit: decimal.Zero,
	}
}

// ZeroSessionStats mirrors ZeroDashboardStats for the session aggregate
func ZeroSessionStats() *SessionStats {
	return &SessionStats{
		TotalProfit: decimal.Zero,
		AvgProfit:   decimal.Zero,
		BiggestWin:  decimal.Zero,
		BiggestLoss: decimal.Zero,
	}
}
