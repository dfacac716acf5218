package models

// Trophy configures the points economy of a competitive match. It is
// read-only during settlement; the engine never mutates trophies.
type Trophy struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// Fee is the full pool pre-debited across both rosters at accept time.
	Fee int64 `json:"fee" gorm:"default:0"`

	// Distribution percentages of the pool per side.
	DistributionWin  int `json:"distribution_win" gorm:"default:70"`
	DistributionLose int `json:"distribution_lose" gorm:"default:30"`

	// Per-event bonuses on top of the roster share.
	BonusGoal   int64 `json:"bonus_goal" gorm:"default:0"`
	BonusAssist int64 `json:"bonus_assist" gorm:"default:0"`
	BonusMotm   int64 `json:"bonus_motm" gorm:"default:0"`

	Timestamps
}
