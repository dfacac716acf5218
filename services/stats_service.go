package services

import (
	"context"
	"fmt"
	"log"

	"matchday-system/models"
	"matchday-system/store"
)

// StatsService coordinates the two-sided stat submission handshake and
// fires settlement when the second side lands.
type StatsService struct {
	Store    store.Store
	Settler  *SettlementService
	Notifier Notifier
}

// submitRetries bounds the re-read loop on lost conditional replaces.
const submitRetries = 3

type SubmitResult struct {
	Waiting bool          `json:"waiting"`
	Match   *models.Match `json:"match"`
}

func NewStatsService(settler *SettlementService, n Notifier) *StatsService {
	return &StatsService{Store: settler.Store, Settler: settler, Notifier: n}
}

// SubmitStats records one captain's stat array for their own side.
//
// The write flipping a submission flag is a conditional replace, so the
// "both sides are now in" observation is atomic with the write itself:
// a lost race re-reads and retries rather than overwriting the other
// side's flag. Settlement runs only on the call whose committed write
// flipped the second flag false→true; a submission that lands with both
// flags already set leaves finalization to the actor that flipped them
// (or to the sweeper, if that actor crashed).
func (s *StatsService) SubmitStats(ctx context.Context, captainEmail, matchID string, stats []models.PlayerStat, teamRating *int) (*SubmitResult, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: stat array is empty", ErrValidation)
	}
	for _, st := range stats {
		if st.PlayerID == "" {
			return nil, fmt.Errorf("%w: stat record missing player id", ErrValidation)
		}
		if st.Goals < 0 || st.Assists < 0 || st.YellowCards < 0 || st.RedCards < 0 {
			return nil, fmt.Errorf("%w: stat counters must be non-negative", ErrValidation)
		}
	}
	if teamRating != nil && (*teamRating < 1 || *teamRating > 5) {
		return nil, fmt.Errorf("%w: team rating must be between 1 and 5", ErrValidation)
	}

	for attempt := 0; attempt < submitRetries; attempt++ {
		m, err := s.Store.GetMatch(ctx, matchID)
		if err != nil {
			return nil, fromStore(err)
		}

		switch m.Status {
		case models.MatchUpcoming, models.MatchLive, models.MatchCompleted:
			// submission window; upcoming/live accepted for resilience
		default:
			return nil, fmt.Errorf("%w: match %s is %s and accepts no stats", ErrInvalidState, matchID, m.Status)
		}

		homeTeam, err := s.Store.GetTeam(ctx, m.HomeTeamID)
		if err != nil {
			return nil, fromStore(err)
		}
		awayTeam, err := s.Store.GetTeam(ctx, m.AwayTeamID)
		if err != nil {
			return nil, fromStore(err)
		}

		var roster []string
		var ratedTeam *models.Team
		isHome := false
		switch captainEmail {
		case homeTeam.CaptainEmail:
			isHome, roster, ratedTeam = true, m.HomePlayers, awayTeam
		case awayTeam.CaptainEmail:
			roster, ratedTeam = m.AwayPlayers, homeTeam
		default:
			return nil, fmt.Errorf("%w: %s captains neither side of match %s", ErrUnauthorized, captainEmail, matchID)
		}

		if err := validateRosterMembership(stats, roster); err != nil {
			return nil, err
		}

		// Submission flags are monotonic: a resubmission before the
		// other side lands just replaces the stored array.
		alreadyBoth := m.HomeStatsSubmitted && m.AwayStatsSubmitted
		if isHome {
			m.HomeStats = stats
			m.HomeStatsSubmitted = true
		} else {
			m.AwayStats = stats
			m.AwayStatsSubmitted = true
		}
		bothIn := m.HomeStatsSubmitted && m.AwayStatsSubmitted

		if err := s.Store.ReplaceMatch(ctx, m, m.Version); err != nil {
			if isVersionConflict(err) {
				log.Printf("[STATS] 🔁 match %s: lost submission race, retrying (%d/%d)", matchID, attempt+1, submitRetries)
				continue
			}
			return nil, fromStore(err)
		}

		// Opponent rating is a side effect independent of settlement;
		// it lands even if the match never reaches final.
		if teamRating != nil {
			ratedTeam.ApplyRating(*teamRating)
			if err := s.Store.UpsertTeam(ctx, ratedTeam); err != nil {
				log.Printf("[STATS] ⚠️ match %s: opponent rating not applied: %v", matchID, err)
			}
		}

		if !bothIn {
			return &SubmitResult{Waiting: true, Match: m}, nil
		}
		if alreadyBoth {
			// Both flags were set before this write: this was an
			// overwrite, not the flip, and the flipping call (or the
			// sweeper) owns finalization.
			return &SubmitResult{Waiting: true, Match: m}, nil
		}

		return s.finalize(ctx, m)
	}

	return nil, fmt.Errorf("%w: match %s under concurrent modification, retry submission", ErrDependencyTimeout, matchID)
}

// finalize runs settlement and commits the terminal status. A store
// failure here leaves the match completed with both flags set; the
// minute sweeper picks it up and re-drives settlement idempotently.
func (s *StatsService) finalize(ctx context.Context, m *models.Match) (*SubmitResult, error) {
	result, err := s.Settler.Settle(ctx, m)
	if err != nil {
		return nil, err
	}

	m.Result = result
	m.Status = models.MatchFinal
	if err := s.Store.ReplaceMatch(ctx, m, m.Version); err != nil {
		if isVersionConflict(err) {
			// Another actor finalized between our settle and write.
			current, gerr := s.Store.GetMatch(ctx, m.ID)
			if gerr == nil && current.Status == models.MatchFinal {
				return &SubmitResult{Match: current}, nil
			}
			return nil, fmt.Errorf("%w: match %s moved during settlement, retry submission", ErrDependencyTimeout, m.ID)
		}
		return nil, fromStore(err)
	}

	log.Printf("[STATS] ✅ match %s finalized %d-%d (winner: %s)", m.ID, result.HomeGoals, result.AwayGoals, result.Winner)
	return &SubmitResult{Match: m}, nil
}

func validateRosterMembership(stats []models.PlayerStat, roster []string) error {
	onRoster := make(map[string]bool, len(roster))
	for _, id := range roster {
		onRoster[id] = true
	}
	for _, st := range stats {
		if !onRoster[st.PlayerID] {
			return fmt.Errorf("%w: player %s is not on the submitting roster", ErrValidation, st.PlayerID)
		}
	}
	return nil
}
