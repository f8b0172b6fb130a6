package model

import (
	"time"

	"gorm.io/gorm"
)

type Deck struct {
	ID             string `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"uniqueIndex" json:"name"`
	Description    string `json:"description"`
	ImportedDeckID string `json:"imported_deck_id"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	BlackCards []BlackCard `gorm:"foreignKey:DeckID" json:"black_cards"`
	WhiteCards []WhiteCard `gorm:"foreignKey:DeckID" json:"white_cards"`
}

type BlackCard struct {
	ID        string `gorm:"primaryKey" json:"id"`
	DeckID    string `gorm:"index" json:"deck_id"`
	Text      string `json:"text"`
	Pick      int    `json:"pick"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WhiteCard struct {
	ID        string `gorm:"primaryKey" json:"id"`
	DeckID    string `gorm:"index" json:"deck_id"`
	Text      string `json:"text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type GameResult struct {
	gorm.Model
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	WinnerName string    `json:"winner_name"`
	Points     int       `json:"points"`
}
