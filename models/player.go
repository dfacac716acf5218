package models

import "time"

type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionAttacker   Position = "attacker"
)

// IsGoalkeeper reports whether the goalkeeper skill set applies.
func (p Position) IsGoalkeeper() bool { return p == PositionGoalkeeper }

// Skills holds both the goalkeeper and the outfield attribute sets.
// Only the six attributes relevant to the player's position are ever
// read or progressed; the other set stays at its stored value.
type Skills struct {
	// Goalkeeper set
	Diving      float64 `json:"diving"`
	Handling    float64 `json:"handling"`
	Kicking     float64 `json:"kicking"`
	Reflexes    float64 `json:"reflexes"`
	Positioning float64 `json:"positioning"`
	Speed       float64 `json:"speed"`

	// Outfield set
	Pace      float64 `json:"pace"`
	Shooting  float64 `json:"shooting"`
	Passing   float64 `json:"passing"`
	Dribbling float64 `json:"dribbling"`
	Defence   float64 `json:"defence"`
	Physical  float64 `json:"physical"`
}

// MatchHistoryEntry is one row of a player's capped match history.
type MatchHistoryEntry struct {
	MatchID            string    `json:"match_id"`
	Date               time.Time `json:"date"`
	Result             string    `json:"result"` // win / loss / draw
	OverallPerformance float64   `json:"overall_performance"`
}

// MatchHistoryCap is the maximum number of retained history entries.
const MatchHistoryCap = 10

// Player is the long-lived aggregate mutated incrementally by
// settlement; it is never replaced wholesale.
type Player struct {
	ID       string   `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string   `gorm:"uniqueIndex;not null" json:"email"`
	Name     string   `json:"name"`
	Position Position `gorm:"type:varchar(16);default:'midfielder'" json:"position"`

	// Cumulative counters
	Matches     int `json:"matches" gorm:"default:0"`
	Goals       int `json:"goals" gorm:"default:0"`
	Assists     int `json:"assists" gorm:"default:0"`
	Wins        int `json:"wins" gorm:"default:0"`
	Losses      int `json:"losses" gorm:"default:0"`
	Draws       int `json:"draws" gorm:"default:0"`
	RedCards    int `json:"red_cards" gorm:"default:0"`
	YellowCards int `json:"yellow_cards" gorm:"default:0"`

	Skills Skills `gorm:"type:jsonb;serializer:json" json:"skills"`

	// Source-faithful spelling, kept for API compatibility.
	OveralRating float64 `gorm:"column:overal_rating" json:"overal_rating"`

	AuraPoints int   `json:"aura_points" gorm:"default:0"` // bounded [0,999]
	Points     int64 `json:"points" gorm:"default:0"`      // spendable balance

	Achievements []string            `gorm:"type:jsonb;serializer:json" json:"achievements"`
	MatchHistory []MatchHistoryEntry `gorm:"type:jsonb;serializer:json" json:"match_history"`

	Timestamps
}

// HasPlayedMatch reports whether the given match already appears in the
// player's history. Settlement uses this as its idempotency check.
func (p *Player) HasPlayedMatch(matchID string) bool {
	for _, e := range p.MatchHistory {
		if e.MatchID == matchID {
			return true
		}
	}
	return false
}

// PushHistory appends an entry, evicting the oldest beyond the cap.
func (p *Player) PushHistory(e MatchHistoryEntry) {
	p.MatchHistory = append(p.MatchHistory, e)
	if n := len(p.MatchHistory); n > MatchHistoryCap {
		p.MatchHistory = p.MatchHistory[n-MatchHistoryCap:]
	}
}
