package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus represents the lifecycle state of a session
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session represents one sit-down play session
type Session struct {
	ID         string           `db:"id" json:"id"`
	UserID     string           `db:"user_id" json:"userId"`
	GameTypeID *string          `db:"game_type_id" json:"gameTypeId,omitempty"`
	SiteID     *string          `db:"site_id" json:"siteId,omitempty"`
	Stakes     string           `db:"stakes" json:"stakes"`
	StartTime  time.Time        `db:"start_time" json:"startTime"`
	EndTime    *time.Time       `db:"end_time" json:"endTime,omitempty"`
	BuyIn      decimal.Decimal  `db:"buy_in" json:"buyIn"`
	CashOut    *decimal.Decimal `db:"cash_out" json:"cashOut,omitempty"`
	Notes      *string          `db:"notes" json:"notes,omitempty"`
	Status     SessionStatus    `db:"status" json:"status"`
}

// Duration returns the session length, zero while the session is still active
func (s *Session) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// SessionRebuy is additional money committed to an in-progress session.
// Immutable once created.
type SessionRebuy struct {
	ID        string          `db:"id" json:"id"`
	SessionID string          `db:"session_id" json:"sessionId"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Timestamp time.Time       `db:"timestamp" json:"timestamp"`
}

// SessionNote is an append-only free-text note attached to a session
type SessionNote struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// SessionDetail is a session with its rebuys, notes and joined reference rows
type SessionDetail struct {
	Session  *Session        `json:"session"`
	Rebuys   []*SessionRebuy `json:"rebuys"`
	Notes    Notes           `json:"notes"`
	Site     *PokerSite      `json:"site,omitempty"`
	GameType *GameType       `json:"gameType,omitempty"`
}

// TotalRebuys sums the rebuy amounts
func (d *SessionDetail) TotalRebuys() decimal.Decimal {
	total := decimal.Zero
	for _, rebuy := range d.Rebuys {
		total = total.Add(rebuy.Amount)
	}
	return total
}

// TotalInvested is the buy-in plus all rebuys
func (d *SessionDetail) TotalInvested() decimal.Decimal {
	return d.Session.BuyIn.Add(d.TotalRebuys())
}

// Profit is cash-out minus total invested; zero cash-out is assumed while
// the session has none recorded
func (d *SessionDetail) Profit() decimal.Decimal {
	cashOut := decimal.Zero
	if d.Session.CashOut != nil {
		cashOut = *d.Session.CashOut
	}
	return cashOut.Sub(d.TotalInvested())
}
