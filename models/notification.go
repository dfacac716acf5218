package models

import "time"

// Notification is a best-effort message delivered to a player. The
// recipient key is always an email address, for captains and roster
// players alike. Rows older than seven days are pruned by the daily
// sweeper.
type Notification struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Recipient string `gorm:"index;not null" json:"recipient"`

	Title   string            `json:"title"`
	Message string            `json:"message"`
	Context map[string]string `gorm:"type:jsonb;serializer:json" json:"context,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
