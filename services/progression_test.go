package services

import (
	"math"
	"testing"

	"matchday-system/models"
)

func TestGainMultiplierBrackets(t *testing.T) {
	cases := []struct {
		current float64
		want    float64
	}{
		{0, 1.0},
		{69.9, 1.0},
		{70, 0.7},
		{79.9, 0.7},
		{80, 0.5},
		{84.9, 0.5},
		{85, 0.3},
		{89.9, 0.3},
		{90, 0.15},
		{94.9, 0.15},
		{95, 0.05},
		{98.9, 0.05},
		{99, 0},
		{99.5, 0},
	}
	for _, c := range cases {
		if got := GainMultiplier(c.current); got != c.want {
			t.Errorf("GainMultiplier(%v) = %v, want %v", c.current, got, c.want)
		}
	}
}

func TestProgressSkillsBaseGains(t *testing.T) {
	p := &models.Player{Position: models.PositionAttacker}
	p.Skills.Shooting = 50
	p.Skills.Pace = 50

	ProgressSkills(p, models.PlayerStat{}, MatchContext{Result: "loss"})

	if p.Skills.Shooting != 50.3 {
		t.Errorf("shooting = %v, want 50.3", p.Skills.Shooting)
	}
	if p.Skills.Pace != 50.3 {
		t.Errorf("pace = %v, want 50.3", p.Skills.Pace)
	}
	if p.OveralRating == 0 {
		t.Error("overall rating not refreshed")
	}
}

func TestProgressSkillsHighValueNearlyFrozen(t *testing.T) {
	// A 96 skill gains 0.3 * 0.05 = 0.015, invisible at one decimal.
	p := &models.Player{Position: models.PositionMidfielder}
	p.Skills.Passing = 96

	ProgressSkills(p, models.PlayerStat{}, MatchContext{Result: "draw"})

	if p.Skills.Passing != 96.0 {
		t.Errorf("passing = %v, want 96.0 (diminished gain invisible)", p.Skills.Passing)
	}
}

func TestProgressSkillsNeverExceedsCap(t *testing.T) {
	p := &models.Player{Position: models.PositionAttacker}
	p.Skills.Shooting = 98.9

	ProgressSkills(p, models.PlayerStat{Goals: 8}, MatchContext{Result: "win"})

	if p.Skills.Shooting > 99 {
		t.Errorf("shooting = %v, exceeds cap 99", p.Skills.Shooting)
	}
}

func TestProgressSkillsGoalkeeperUsesOwnSet(t *testing.T) {
	p := &models.Player{Position: models.PositionGoalkeeper}
	p.Skills.Reflexes = 60
	p.Skills.Shooting = 40

	ProgressSkills(p, models.PlayerStat{}, MatchContext{Result: "win"})

	if p.Skills.Reflexes != 60.3 {
		t.Errorf("reflexes = %v, want 60.3", p.Skills.Reflexes)
	}
	if p.Skills.Shooting != 40 {
		t.Errorf("shooting = %v, goalkeeper must not touch outfield set", p.Skills.Shooting)
	}
}

func TestProgressSkillsCleanSheetDefender(t *testing.T) {
	winner := &models.Player{Position: models.PositionDefender}
	winner.Skills.Defence = 50
	ProgressSkills(winner, models.PlayerStat{}, MatchContext{Result: "win", GoalsConceded: 0})

	conceded := &models.Player{Position: models.PositionDefender}
	conceded.Skills.Defence = 50
	ProgressSkills(conceded, models.PlayerStat{}, MatchContext{Result: "win", GoalsConceded: 2})

	if winner.Skills.Defence <= conceded.Skills.Defence {
		t.Errorf("clean sheet defence %v not above conceding defence %v",
			winner.Skills.Defence, conceded.Skills.Defence)
	}
}

func TestOverallPerformanceBounds(t *testing.T) {
	p := &models.Player{Position: models.PositionAttacker}

	// All-zero skills plus heavy cards cannot go below zero.
	low := OverallPerformance(p, models.PlayerStat{RedCards: 5, YellowCards: 5}, MatchContext{})
	if low < 0 {
		t.Errorf("performance %v below 0", low)
	}

	// Max skills plus a goal spree cannot exceed 100.
	for _, attr := range outfieldAttrs {
		*skillPtr(&p.Skills, attr) = 99
	}
	high := OverallPerformance(p, models.PlayerStat{Goals: 10}, MatchContext{ManOfTheMatch: true, OpponentTeamRating: 100})
	if high > 100 {
		t.Errorf("performance %v above 100", high)
	}
}

func TestOverallPerformanceDefaultsOpponentRating(t *testing.T) {
	p := &models.Player{Position: models.PositionMidfielder}
	withDefault := OverallPerformance(p, models.PlayerStat{}, MatchContext{})
	withExplicit := OverallPerformance(p, models.PlayerStat{}, MatchContext{OpponentTeamRating: 50})
	if math.Abs(withDefault-withExplicit) > 1e-9 {
		t.Errorf("absent rating %v != explicit 50 rating %v", withDefault, withExplicit)
	}
}

func TestApplyAuraBounds(t *testing.T) {
	p := &models.Player{AuraPoints: 950}
	ApplyAura(p, true)
	if p.AuraPoints != 999 {
		t.Errorf("aura = %d, want clamp at 999", p.AuraPoints)
	}

	p.AuraPoints = 40
	ApplyAura(p, false)
	if p.AuraPoints != 0 {
		t.Errorf("aura = %d, want floor at 0", p.AuraPoints)
	}
}

func TestSelectManOfTheMatch(t *testing.T) {
	stats := []models.PlayerStat{
		{PlayerID: "a", Goals: 1, Assists: 2},
		{PlayerID: "b", Goals: 2, Assists: 0},
		{PlayerID: "c", Goals: 2, Assists: 1},
	}
	id, ok := SelectManOfTheMatch(stats)
	if !ok || id != "c" {
		t.Errorf("motm = %q ok=%v, want c (goals tie broken by assists)", id, ok)
	}

	// Full tie: the first record wins, a MOTM always exists.
	tied := []models.PlayerStat{
		{PlayerID: "x", Goals: 1, Assists: 1},
		{PlayerID: "y", Goals: 1, Assists: 1},
	}
	id, ok = SelectManOfTheMatch(tied)
	if !ok || id != "x" {
		t.Errorf("motm = %q ok=%v, want first record x on full tie", id, ok)
	}

	if _, ok := SelectManOfTheMatch(nil); ok {
		t.Error("motm assigned with no stat records")
	}
}

func TestPushHistoryCap(t *testing.T) {
	p := &models.Player{}
	for i := 0; i < 15; i++ {
		p.PushHistory(models.MatchHistoryEntry{MatchID: string(rune('a' + i))})
	}
	if len(p.MatchHistory) != models.MatchHistoryCap {
		t.Fatalf("history length = %d, want %d", len(p.MatchHistory), models.MatchHistoryCap)
	}
	if p.MatchHistory[0].MatchID != "f" {
		t.Errorf("oldest retained entry = %q, want f (FIFO eviction)", p.MatchHistory[0].MatchID)
	}
}
