package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"matchday-system/models"
	"matchday-system/store"
)

// Archiver receives the finalized result payload for long-term storage.
// Best-effort; settlement correctness never depends on it.
type Archiver interface {
	ArchiveResult(ctx context.Context, matchID string, payload []byte) error
}

// SettlementService distributes the points economy and triggers skill
// progression once both sides of a match have submitted stats.
type SettlementService struct {
	Store    store.Store
	Notifier Notifier
	Archiver Archiver // optional
}

func NewSettlementService(st store.Store, n Notifier, a Archiver) *SettlementService {
	return &SettlementService{Store: st, Notifier: n, Archiver: a}
}

// sideOutcome is the per-roster settlement plan.
type sideOutcome struct {
	teamID         string
	roster         []string
	stats          []models.PlayerStat
	result         string // win / loss / draw
	goalsConceded  int
	perPlayerShare int64
	settled        []string // emails of players settled by this run
}

// Settle computes the result for a match whose both stat slots are
// filled, applies points, counters, skills and achievements to every
// participant, and updates both team aggregates. The caller is
// responsible for persisting the final status on the match document.
//
// Per-player upserts are idempotent: a player whose history already
// holds this match id is skipped. A run that settles nobody also skips
// team counters, notifications and the archive, so a crashed
// settlement can be re-driven safely.
func (s *SettlementService) Settle(ctx context.Context, m *models.Match) (*models.MatchResult, error) {
	homeGoals := sumGoals(m.HomeStats)
	awayGoals := sumGoals(m.AwayStats)

	result := &models.MatchResult{
		HomeGoals: homeGoals,
		AwayGoals: awayGoals,
		Winner:    models.ResultDraw,
	}
	switch {
	case homeGoals > awayGoals:
		result.Winner = m.HomeTeamID
	case awayGoals > homeGoals:
		result.Winner = m.AwayTeamID
	}

	union := append(append([]models.PlayerStat{}, m.HomeStats...), m.AwayStats...)
	if motm, ok := SelectManOfTheMatch(union); ok {
		result.ManOfTheMatch = &motm
	}

	home := sideOutcome{teamID: m.HomeTeamID, roster: m.HomePlayers, stats: m.HomeStats, goalsConceded: awayGoals}
	away := sideOutcome{teamID: m.AwayTeamID, roster: m.AwayPlayers, stats: m.AwayStats, goalsConceded: homeGoals}
	switch result.Winner {
	case models.ResultDraw:
		home.result, away.result = "draw", "draw"
	case m.HomeTeamID:
		home.result, away.result = "win", "loss"
	default:
		home.result, away.result = "loss", "win"
	}

	// Economy plan. The trophy is resolved before any mutation so a
	// malformed reference aborts settlement cleanly.
	var trophy *models.Trophy
	if m.TrophyID != nil {
		var err error
		trophy, err = s.Store.GetTrophy(ctx, *m.TrophyID)
		if err != nil {
			return nil, fromStore(fmt.Errorf("settle %s: %w", m.ID, err))
		}
		for _, side := range []*sideOutcome{&home, &away} {
			var share int64
			switch side.result {
			case "win":
				share = trophy.Fee * int64(trophy.DistributionWin) / 100
			case "loss":
				share = trophy.Fee * int64(trophy.DistributionLose) / 100
			default: // draw: pool split 50/50
				share = trophy.Fee / 2
			}
			if len(side.roster) > 0 {
				side.perPlayerShare = share / int64(len(side.roster))
			}
		}
	}

	now := time.Now()
	for _, side := range []*sideOutcome{&home, &away} {
		if err := s.settleSide(ctx, m, side, result, trophy, now); err != nil {
			return nil, err
		}
	}

	// A run that settled nobody is a re-drive: every participant already
	// carries this match in their history, so counters, notifications
	// and the archive upload happened on the first run.
	participants := append(append([]string{}, home.settled...), away.settled...)
	if len(participants) == 0 {
		return result, nil
	}

	for _, side := range []*sideOutcome{&home, &away} {
		if err := s.settleTeam(ctx, m, side, trophy); err != nil {
			return nil, err
		}
	}

	Send(ctx, s.Notifier, participants, "Match finalized",
		fmt.Sprintf("Final score %d-%d at %s", homeGoals, awayGoals, m.Location),
		map[string]string{"match_id": m.ID, "slug": m.Slug})

	s.archive(ctx, m, result)

	return result, nil
}

func (s *SettlementService) settleSide(ctx context.Context, m *models.Match, side *sideOutcome, result *models.MatchResult, trophy *models.Trophy, now time.Time) error {
	statByPlayer := make(map[string]models.PlayerStat, len(side.stats))
	for _, st := range side.stats {
		statByPlayer[st.PlayerID] = st
	}

	for _, playerID := range side.roster {
		p, err := s.Store.GetPlayer(ctx, playerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Printf("[SETTLE] ⚠️ match %s: player %s missing, skipped", m.ID, playerID)
				continue
			}
			return fromStore(err)
		}
		if p.HasPlayedMatch(m.ID) {
			continue // already processed in a prior (crashed or raced) run
		}

		stat := statByPlayer[playerID]
		stat.PlayerID = playerID
		isMotm := result.ManOfTheMatch != nil && *result.ManOfTheMatch == playerID

		mc := MatchContext{
			Result:             side.result,
			GoalsConceded:      side.goalsConceded,
			ManOfTheMatch:      isMotm,
			OpponentTeamRating: stat.OpponentTeamRating,
		}

		p.Matches++
		p.Goals += stat.Goals
		p.Assists += stat.Assists
		p.YellowCards += stat.YellowCards
		p.RedCards += stat.RedCards
		switch side.result {
		case "win":
			p.Wins++
		case "loss":
			p.Losses++
		default:
			p.Draws++
		}

		if trophy != nil {
			earned := side.perPlayerShare +
				int64(stat.Goals)*trophy.BonusGoal +
				int64(stat.Assists)*trophy.BonusAssist
			if isMotm {
				earned += trophy.BonusMotm
			}
			p.Points += earned
			if side.result == "win" {
				p.Achievements = appendUnique(p.Achievements, trophy.ID)
			}
		}
		if isMotm {
			p.Achievements = appendUnique(p.Achievements, "MOTM_"+m.ID)
		}

		ProgressSkills(p, stat, mc)
		perf := OverallPerformance(p, stat, mc)
		ApplyAura(p, isMotm)
		p.PushHistory(models.MatchHistoryEntry{
			MatchID:            m.ID,
			Date:               now,
			Result:             side.result,
			OverallPerformance: perf,
		})

		if err := s.Store.UpsertPlayer(ctx, p); err != nil {
			return fromStore(err)
		}
		side.settled = append(side.settled, p.Email)
	}
	return nil
}

func (s *SettlementService) settleTeam(ctx context.Context, m *models.Match, side *sideOutcome, trophy *models.Trophy) error {
	t, err := s.Store.GetTeam(ctx, side.teamID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("[SETTLE] ⚠️ match %s: team %s missing, skipped", m.ID, side.teamID)
			return nil
		}
		return fromStore(err)
	}

	t.MatchesPlayed++
	switch side.result {
	case "win":
		t.Wins++
		if trophy != nil {
			t.Achievements = appendUnique(t.Achievements, trophy.ID)
		}
	case "loss":
		t.Losses++
	default:
		t.Draws++
	}

	if err := s.Store.UpsertTeam(ctx, t); err != nil {
		return fromStore(err)
	}
	return nil
}

func (s *SettlementService) archive(ctx context.Context, m *models.Match, result *models.MatchResult) {
	if s.Archiver == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"match_id": m.ID,
		"slug":     m.Slug,
		"result":   result,
		"home":     m.HomeStats,
		"away":     m.AwayStats,
	})
	if err != nil {
		log.Printf("[SETTLE] ⚠️ archive marshal failed for %s: %v", m.ID, err)
		return
	}
	if err := s.Archiver.ArchiveResult(ctx, m.ID, payload); err != nil {
		log.Printf("[SETTLE] ⚠️ archive upload failed for %s: %v", m.ID, err)
	}
}

func sumGoals(stats []models.PlayerStat) int {
	total := 0
	for _, s := range stats {
		total += s.Goals
	}
	return total
}

func appendUnique(list []string, v string) []string {
	for _, e := range list {
		if e == v {
			return list
		}
	}
	return append(list, v)
}
