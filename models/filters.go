package models

import "time"

// SessionFilters narrows a completed-session search. Zero values mean
// "no filter". Stakes matching and ProfitOnly are applied in application
// code after the fetch; the rest filter in the query.
type SessionFilters struct {
	SiteID     string
	GameTypeID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Stakes     string
	ProfitOnly bool
	Limit      int
	Offset     int
}
