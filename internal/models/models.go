package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// User represents a bird watcher identified by their Telegram id
type User struct {
	TelegramID int64     `json:"telegram_id"`
	Region     string    `json:"region"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sighting represents a single logged bird observation
type Sighting struct {
	ID             int64       `json:"id"`
	TelegramID     int64       `json:"telegram_id"`
	CommonName     string      `json:"common_name"`
	ScientificName string      `json:"scientific_name"`
	Rarity         Rarity      `json:"rarity"`
	Region         string      `json:"region"`
	DateSpotted    pgtype.Date `json:"date_spotted"`
	IsLifer        bool        `json:"is_lifer"`
	Notes          string      `json:"notes"`
	CardPNGURL     string      `json:"card_png_url"`
	CreatedAt      time.Time   `json:"created_at"`
}

// SightingInput holds the caller-supplied fields of a new sighting
type SightingInput struct {
	CommonName     string      `json:"common_name"`
	ScientificName string      `json:"scientific_name"`
	Rarity         Rarity      `json:"rarity"`
	Region         string      `json:"region"`
	DateSpotted    pgtype.Date `json:"date_spotted"`
	Notes          string      `json:"notes"`
	CardPNGURL     string      `json:"card_png_url"`
}

// ChecklistItem represents one target species on a user's regional checklist
type ChecklistItem struct {
	ID         int64       `json:"id"`
	TelegramID int64       `json:"telegram_id"`
	Region     string      `json:"region"`
	Species    string      `json:"species"`
	Slug       string      `json:"slug"`
	RarityTier Rarity      `json:"rarity_tier"`
	Found      bool        `json:"found"`
	DateFound  pgtype.Date `json:"date_found"`
}

// ChecklistItemInput is one row of a checklist seed
type ChecklistItemInput struct {
	Region     string `json:"region"`
	Species    string `json:"species"`
	Slug       string `json:"slug"`
	RarityTier Rarity `json:"rarity_tier"`
}

// RarestBird summarises the highest-ranked lifer
type RarestBird struct {
	CommonName  string      `json:"common_name"`
	Rarity      Rarity      `json:"rarity"`
	DateSpotted pgtype.Date `json:"date_spotted"`
}

// MostRecent summarises the latest lifer by date spotted
type MostRecent struct {
	CommonName  string      `json:"common_name"`
	DateSpotted pgtype.Date `json:"date_spotted"`
}

// Stats holds the aggregate figures for a user's sighting history
type Stats struct {
	TotalSightings int         `json:"total_sightings"`
	TotalSpecies   int         `json:"total_species"`
	RarestBird     *RarestBird `json:"rarest_bird"`
	MostRecent     *MostRecent `json:"most_recent"`
}

// NewDate truncates t to a calendar date
func NewDate(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}
