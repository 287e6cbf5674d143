package events

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// RegisterAuditLog subscribes structured-log handlers for every event type.
// The bus delivers only after the owning transaction commits, so the audit
// trail records money movements and session transitions that actually
// happened.
func RegisterAuditLog(bus *Bus) {
	bus.Subscribe(EventTypeBankrollChange, func(ctx context.Context, event Event) {
		if e, ok := event.(BankrollChangeEvent); ok {
			log.WithFields(log.Fields{
				"userId":     e.UserID,
				"bankrollId": e.BankrollID,
				"type":       e.TransactionType,
				"amount":     e.Amount.String(),
				"oldBalance": e.OldBalance.String(),
				"newBalance": e.NewBalance.String(),
			}).Info("Bankroll balance changed")
		}
	})

	bus.Subscribe(EventTypeSessionStarted, func(ctx context.Context, event Event) {
		if e, ok := event.(SessionStartedEvent); ok {
			log.WithFields(log.Fields{
				"userId":    e.UserID,
				"sessionId": e.SessionID,
				"stakes":    e.Stakes,
				"buyIn":     e.BuyIn.String(),
			}).Info("Session started")
		}
	})

	bus.Subscribe(EventTypeRebuyAdded, func(ctx context.Context, event Event) {
		if e, ok := event.(RebuyAddedEvent); ok {
			log.WithFields(log.Fields{
				"userId":    e.UserID,
				"sessionId": e.SessionID,
				"amount":    e.Amount.String(),
			}).Info("Rebuy added")
		}
	})

	bus.Subscribe(EventTypeSessionEnded, func(ctx context.Context, event Event) {
		if e, ok := event.(SessionEndedEvent); ok {
			log.WithFields(log.Fields{
				"userId":    e.UserID,
				"sessionId": e.SessionID,
				"cashOut":   e.CashOut.String(),
				"profit":    e.Profit.String(),
			}).Info("Session ended")
		}
	})
}
