package models

import "time"

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchUpcoming  MatchStatus = "upcoming"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
	MatchFinal     MatchStatus = "final"
)

// Terminal reports whether no further transition is allowed from s.
func (s MatchStatus) Terminal() bool {
	return s == MatchCancelled || s == MatchFinal
}

// PlayerStat is one player's line in a captain's stat submission.
// OpponentTeamRating is supplied by the submitting captain; 0 means
// "not supplied" and defaults to 50 during settlement.
type PlayerStat struct {
	PlayerID           string  `json:"player_id"`
	Goals              int     `json:"goals"`
	Assists            int     `json:"assists"`
	YellowCards        int     `json:"yellow_cards"`
	RedCards           int     `json:"red_cards"`
	OpponentTeamRating float64 `json:"opponent_team_rating,omitempty"`
}

// MatchResult is present only once a match reaches the final status.
// Winner holds the winning team's ID, or "draw".
type MatchResult struct {
	HomeGoals     int     `json:"home_goals"`
	AwayGoals     int     `json:"away_goals"`
	Winner        string  `json:"winner"`
	ManOfTheMatch *string `json:"man_of_the_match"`
}

const ResultDraw = "draw"

// Match is the central document of the engine. Rosters, stat arrays and
// the result live in JSON columns; concurrent writers are serialized by
// the Version column (conditional replace).
type Match struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	HomeTeamID string `gorm:"index;not null" json:"home_team_id"`
	AwayTeamID string `gorm:"index;not null" json:"away_team_id"`

	HomePlayers []string `gorm:"type:jsonb;serializer:json" json:"home_players"`
	AwayPlayers []string `gorm:"type:jsonb;serializer:json" json:"away_players"`

	Location  string    `json:"location"`
	Slug      string    `gorm:"index" json:"slug"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	TrophyID  *string   `gorm:"index" json:"trophy_id,omitempty"` // nil = friendly, no economy

	Status MatchStatus `gorm:"index;type:varchar(16);default:'pending'" json:"status"`

	HomeStatsSubmitted bool         `json:"home_stats_submitted"`
	AwayStatsSubmitted bool         `json:"away_stats_submitted"`
	HomeStats          []PlayerStat `gorm:"type:jsonb;serializer:json" json:"home_stats,omitempty"`
	AwayStats          []PlayerStat `gorm:"type:jsonb;serializer:json" json:"away_stats,omitempty"`

	Result *MatchResult `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`

	// Optimistic concurrency counter; bumped on every replace.
	Version int `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RosterFor returns the stored roster for the given team, or nil when
// the team plays no part in this match.
func (m *Match) RosterFor(teamID string) []string {
	switch teamID {
	case m.HomeTeamID:
		return m.HomePlayers
	case m.AwayTeamID:
		return m.AwayPlayers
	}
	return nil
}
