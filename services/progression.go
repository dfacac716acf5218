package services

import (
	"math"

	"matchday-system/models"
)

// Skill progression is pure arithmetic over (player, stat line, match
// context). Nothing in here touches the store.

const (
	skillCap             = 99.0
	auraCap              = 999
	auraStep             = 100
	defaultOppTeamRating = 50.0
)

// AttrWeight is one entry of a position's base gain table.
type AttrWeight struct {
	Attr   string
	Weight float64
}

// Base position-weighted gains, applied every match regardless of
// stats. Immutable configuration; never mutated at runtime.
var baseGains = map[models.Position][]AttrWeight{
	models.PositionGoalkeeper: {
		{"reflexes", 0.30},
		{"diving", 0.25},
		{"handling", 0.20},
		{"positioning", 0.20},
		{"kicking", 0.15},
		{"speed", 0.10},
	},
	models.PositionDefender: {
		{"defence", 0.30},
		{"physical", 0.25},
		{"pace", 0.20},
		{"passing", 0.15},
		{"dribbling", 0.10},
		{"shooting", 0.05},
	},
	models.PositionMidfielder: {
		{"passing", 0.30},
		{"dribbling", 0.25},
		{"physical", 0.20},
		{"pace", 0.15},
		{"shooting", 0.10},
		{"defence", 0.05},
	},
	models.PositionAttacker: {
		{"shooting", 0.30},
		{"pace", 0.25},
		{"dribbling", 0.20},
		{"physical", 0.15},
		{"passing", 0.10},
		{"defence", 0.05},
	},
}

// goalkeeperAttrs / outfieldAttrs are the six attributes whose mean is
// the player's overall rating.
var goalkeeperAttrs = []string{"diving", "handling", "kicking", "reflexes", "positioning", "speed"}
var outfieldAttrs = []string{"pace", "shooting", "passing", "dribbling", "defence", "physical"}

// GainMultiplier returns the diminishing-returns factor for a skill at
// its current value. Hard cap at 99.
func GainMultiplier(current float64) float64 {
	switch {
	case current < 70:
		return 1.0
	case current < 80:
		return 0.7
	case current < 85:
		return 0.5
	case current < 90:
		return 0.3
	case current < 95:
		return 0.15
	case current < 99:
		return 0.05
	default:
		return 0
	}
}

func skillPtr(s *models.Skills, attr string) *float64 {
	switch attr {
	case "diving":
		return &s.Diving
	case "handling":
		return &s.Handling
	case "kicking":
		return &s.Kicking
	case "reflexes":
		return &s.Reflexes
	case "positioning":
		return &s.Positioning
	case "speed":
		return &s.Speed
	case "pace":
		return &s.Pace
	case "shooting":
		return &s.Shooting
	case "passing":
		return &s.Passing
	case "dribbling":
		return &s.Dribbling
	case "defence":
		return &s.Defence
	case "physical":
		return &s.Physical
	}
	return nil
}

// applyGain adds gain damped by the multiplier at the attribute's
// current value, clamped into [0, 99].
func applyGain(s *models.Skills, attr string, gain float64) {
	v := skillPtr(s, attr)
	if v == nil {
		return
	}
	*v += gain * GainMultiplier(*v)
	if *v > skillCap {
		*v = skillCap
	}
	if *v < 0 {
		*v = 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MatchContext carries the per-player settlement facts the calculator
// needs beyond the raw stat line.
type MatchContext struct {
	Result        string // win / loss / draw, from the player's side
	GoalsConceded int
	ManOfTheMatch bool

	// Submitter-supplied, unvalidated; 0 means absent (defaults to 50).
	OpponentTeamRating float64
}

// ProgressSkills applies base and stat-driven gains to the player's
// position-relevant attributes and refreshes the overall rating.
func ProgressSkills(p *models.Player, stat models.PlayerStat, mc MatchContext) {
	s := &p.Skills

	for _, g := range baseGains[p.Position] {
		applyGain(s, g.Attr, g.Weight)
	}

	if stat.Goals > 0 {
		applyGain(s, "shooting", float64(stat.Goals)*0.5)
	}
	if stat.Assists > 0 {
		applyGain(s, "passing", float64(stat.Assists)*0.4)
	}
	if mc.Result == "win" && p.Position == models.PositionDefender && mc.GoalsConceded == 0 {
		applyGain(s, "defence", 0.5)
	}
	if mc.ManOfTheMatch {
		applyGain(s, "dribbling", 1.0)
	}

	for _, attr := range relevantAttrs(p.Position) {
		v := skillPtr(s, attr)
		*v = round1(*v)
	}

	p.OveralRating = round1(meanSkill(p))
}

func relevantAttrs(pos models.Position) []string {
	if pos.IsGoalkeeper() {
		return goalkeeperAttrs
	}
	return outfieldAttrs
}

func meanSkill(p *models.Player) float64 {
	var sum float64
	attrs := relevantAttrs(p.Position)
	for _, attr := range attrs {
		sum += *skillPtr(&p.Skills, attr)
	}
	return sum / float64(len(attrs))
}

// OverallPerformance scores a single appearance, bounded into [0,100].
func OverallPerformance(p *models.Player, stat models.PlayerStat, mc MatchContext) float64 {
	statsScore := float64(stat.Goals*5 + stat.Assists*3 - stat.YellowCards*2 - stat.RedCards*5)
	if mc.ManOfTheMatch {
		statsScore += 10
	}

	oppRating := mc.OpponentTeamRating
	if oppRating <= 0 {
		oppRating = defaultOppTeamRating
	}
	if oppRating > 100 {
		oppRating = 100
	}

	perf := 0.6*meanSkill(p) + statsScore + 0.4*oppRating
	if perf < 0 {
		perf = 0
	}
	if perf > 100 {
		perf = 100
	}
	return round1(perf)
}

// ApplyAura moves the bounded aura balance: +100 for the man of the
// match, -100 for every other participant.
func ApplyAura(p *models.Player, motm bool) {
	if motm {
		p.AuraPoints += auraStep
		if p.AuraPoints > auraCap {
			p.AuraPoints = auraCap
		}
		return
	}
	p.AuraPoints -= auraStep
	if p.AuraPoints < 0 {
		p.AuraPoints = 0
	}
}

// SelectManOfTheMatch picks the standout performer across both sides:
// most goals, ties broken by assists. The first record wins remaining
// ties, so a MOTM is always assigned when any record exists.
func SelectManOfTheMatch(stats []models.PlayerStat) (string, bool) {
	if len(stats) == 0 {
		return "", false
	}
	best := stats[0]
	for _, s := range stats[1:] {
		if s.Goals > best.Goals || (s.Goals == best.Goals && s.Assists > best.Assists) {
			best = s
		}
	}
	return best.PlayerID, true
}
