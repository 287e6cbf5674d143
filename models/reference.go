package models

// PokerSite is an administrator-curated lookup row, read-only to the application
type PokerSite struct {
	ID     string  `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	URL    *string `db:"url" json:"url,omitempty"`
	Active bool    `db:"active" json:"active"`
}

// GameType is an administrator-curated lookup row, read-only to the application
type GameType struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	ShortName string `db:"short_name" json:"shortName"`
}
