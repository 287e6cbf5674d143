package events

import (
	"context"
	"sync"

	"stacktrack/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBankrollChange EventType = "bankroll_change"
	EventTypeSessionStarted EventType = "session_started"
	EventTypeRebuyAdded     EventType = "rebuy_added"
	EventTypeSessionEnded   EventType = "session_ended"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BankrollChangeEvent represents a bankroll balance change that occurred
type BankrollChangeEvent struct {
	UserID          string
	BankrollID      string
	OldBalance      decimal.Decimal
	NewBalance      decimal.Decimal
	TransactionType models.TransactionType
	Amount          decimal.Decimal
}

func (e BankrollChangeEvent) Type() EventType {
	return EventTypeBankrollChange
}

// SessionStartedEvent represents a session entering the active state
type SessionStartedEvent struct {
	UserID    string
	SessionID string
	Stakes    string
	BuyIn     decimal.Decimal
}

func (e SessionStartedEvent) Type() EventType {
	return EventTypeSessionStarted
}

// RebuyAddedEvent represents a rebuy recorded against an active session
type RebuyAddedEvent struct {
	UserID    string
	SessionID string
	Amount    decimal.Decimal
}

func (e RebuyAddedEvent) Type() EventType {
	return EventTypeRebuyAdded
}

// SessionEndedEvent represents a session transitioning to completed
type SessionEndedEvent struct {
	UserID    string
	SessionID string
	CashOut   decimal.Decimal
	Profit    decimal.Decimal
}

func (e SessionEndedEvent) Type() EventType {
	return EventTypeSessionEnded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the request
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus wraps the main bus for one unit of work
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
// Uses a background context so handlers outlive the request's transaction.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
