package models

import (
	"time"

	"gorm.io/gorm"
)

// Team aggregates are only ever updated incrementally by settlement and
// by opponent ratings attached to stat submissions.
type Team struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	CaptainEmail string `gorm:"index;not null" json:"captain_email"` // the authorized agent

	MatchesPlayed int `json:"matches_played" gorm:"default:0"`
	Wins          int `json:"wins" gorm:"default:0"`
	Losses        int `json:"losses" gorm:"default:0"`
	Draws         int `json:"draws" gorm:"default:0"`

	// Running average of 1-5 ratings left by opposing captains.
	RatingAvg   float64 `json:"rating_avg" gorm:"default:0"`
	RatingCount int     `json:"rating_count" gorm:"default:0"`

	Achievements []string `gorm:"type:jsonb;serializer:json" json:"achievements"`

	Timestamps
}

// ApplyRating folds one 1-5 rating into the running average.
func (t *Team) ApplyRating(rating int) {
	t.RatingAvg = (t.RatingAvg*float64(t.RatingCount) + float64(rating)) / float64(t.RatingCount+1)
	t.RatingCount++
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
