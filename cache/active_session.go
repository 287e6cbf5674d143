package cache

import (
	"context"
	"encoding/json"
	"time"

	"stacktrack/models"

	log "github.com/sirupsen/logrus"
)

const activeSessionKeyPrefix = "stacktrack:active-session:"

// ActiveSession caches each user's current active session for a short
// freshness window. A cached nil is meaningful: it remembers that the user
// has no active session, so repeated dashboard polls skip the database.
//
// Mutating calls must invalidate explicitly; the TTL only bounds staleness
// when an invalidation is missed.
type ActiveSession struct {
	store Store
	ttl   time.Duration
}

// NewActiveSession creates the cache with the given freshness window
func NewActiveSession(store Store, ttl time.Duration) *ActiveSession {
	return &ActiveSession{store: store, ttl: ttl}
}

// Get returns the cached detail and whether the cache held an answer.
// (nil, true) means "known to have no active session".
func (c *ActiveSession) Get(ctx context.Context, userID string) (*models.SessionDetail, bool) {
	raw, found, err := c.store.Get(ctx, activeSessionKeyPrefix+userID)
	if err != nil {
		log.WithError(err).WithField("userId", userID).Warn("Active session cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var detail *models.SessionDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		log.WithError(err).WithField("userId", userID).Warn("Active session cache entry corrupt")
		_ = c.store.Delete(ctx, activeSessionKeyPrefix+userID)
		return nil, false
	}
	return detail, true
}

// Put stores the detail (or a nil marker) for the freshness window
func (c *ActiveSession) Put(ctx context.Context, userID string, detail *models.SessionDetail) {
	raw, err := json.Marshal(detail)
	if err != nil {
		log.WithError(err).WithField("userId", userID).Warn("Active session cache encode failed")
		return
	}
	if err := c.store.Set(ctx, activeSessionKeyPrefix+userID, raw, c.ttl); err != nil {
		log.WithError(err).WithField("userId", userID).Warn("Active session cache write failed")
	}
}

// Invalidate drops the entry; called after every mutating session call
func (c *ActiveSession) Invalidate(ctx context.Context, userID string) {
	if err := c.store.Delete(ctx, activeSessionKeyPrefix+userID); err != nil {
		log.WithError(err).WithField("userId", userID).Warn("Active session cache invalidation failed")
	}
}
