package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"matchday-system/models"
	"matchday-system/store"
)

// MatchService owns the match status field: creation, the opposing
// captain's accept/reject, and the accept-time fee pre-debit.
type MatchService struct {
	Store    store.Store
	Notifier Notifier
}

func NewMatchService(st store.Store, n Notifier) *MatchService {
	return &MatchService{Store: st, Notifier: n}
}

// transitions is the forward-only status graph. Everything not listed
// is rejected; cancelled and final are absorbing.
var transitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchPending:   {models.MatchUpcoming, models.MatchCancelled},
	models.MatchUpcoming:  {models.MatchLive, models.MatchCompleted, models.MatchFinal},
	models.MatchLive:      {models.MatchCompleted, models.MatchFinal},
	models.MatchCompleted: {models.MatchFinal},
}

// CanTransition reports whether from→to is a legal forward move.
func CanTransition(from, to models.MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type CreateMatchInput struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	Roster     []string  `json:"roster"` // home roster, picked by the creating captain
	Location   string    `json:"location"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	TrophyID   *string   `json:"trophy_id,omitempty"`
}

// CreateMatch inserts a pending match proposed by the home captain and
// invites the away captain to respond.
func (s *MatchService) CreateMatch(ctx context.Context, captainEmail string, in CreateMatchInput) (*models.Match, error) {
	switch {
	case in.HomeTeamID == "" || in.AwayTeamID == "":
		return nil, fmt.Errorf("%w: home and away team required", ErrValidation)
	case in.HomeTeamID == in.AwayTeamID:
		return nil, fmt.Errorf("%w: a team cannot play itself", ErrValidation)
	case len(in.Roster) == 0:
		return nil, fmt.Errorf("%w: roster is required", ErrValidation)
	case in.StartTime.IsZero() || in.EndTime.IsZero():
		return nil, fmt.Errorf("%w: start_time and end_time are required", ErrValidation)
	case !in.EndTime.After(in.StartTime):
		return nil, fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}

	home, err := s.Store.GetTeam(ctx, in.HomeTeamID)
	if err != nil {
		return nil, fromStore(err)
	}
	if home.CaptainEmail != captainEmail {
		return nil, fmt.Errorf("%w: only the home captain may create this match", ErrUnauthorized)
	}
	away, err := s.Store.GetTeam(ctx, in.AwayTeamID)
	if err != nil {
		return nil, fromStore(err)
	}
	if in.TrophyID != nil {
		if _, err := s.Store.GetTrophy(ctx, *in.TrophyID); err != nil {
			return nil, fromStore(err)
		}
	}

	m := &models.Match{
		ID:          uuid.NewString(),
		HomeTeamID:  in.HomeTeamID,
		AwayTeamID:  in.AwayTeamID,
		HomePlayers: in.Roster,
		Location:    in.Location,
		Slug:        slug.Make(home.Name + " vs " + away.Name),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		TrophyID:    in.TrophyID,
		Status:      models.MatchPending,
	}
	if err := s.Store.InsertMatch(ctx, m); err != nil {
		return nil, fromStore(err)
	}

	Send(ctx, s.Notifier, []string{away.CaptainEmail}, "Match invite",
		fmt.Sprintf("%s challenged you at %s", home.Name, in.Location),
		map[string]string{"match_id": m.ID, "slug": m.Slug})

	return m, nil
}

// RespondToInvite executes the away captain's accept or reject on a
// pending match. Rejecting has no economic side effect; accepting sets
// the away roster and pre-debits each selected player's equal share of
// half the trophy fee. All debits are computed up front and written
// only after the status transition commits, so a terminal or raced
// match leaves no partial mutation.
func (s *MatchService) RespondToInvite(ctx context.Context, captainEmail, matchID string, accept bool, roster []string) (*models.Match, error) {
	m, err := s.Store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fromStore(err)
	}
	if m.Status != models.MatchPending {
		return nil, fmt.Errorf("%w: match %s is %s, expected pending", ErrInvalidState, matchID, m.Status)
	}

	away, err := s.Store.GetTeam(ctx, m.AwayTeamID)
	if err != nil {
		return nil, fromStore(err)
	}
	if away.CaptainEmail != captainEmail {
		return nil, fmt.Errorf("%w: only the invited captain may respond", ErrUnauthorized)
	}

	if !accept {
		m.Status = models.MatchCancelled
		if err := s.replaceGuarded(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	}

	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: roster is required to accept", ErrValidation)
	}

	// Plan the fee pre-debit before touching anything. The fee is split
	// evenly between the two rosters, then evenly among each roster's
	// own players; integer-floor division absorbs the remainder.
	type debit struct {
		player *models.Player
		amount int64
	}
	var debits []debit
	if m.TrophyID != nil {
		trophy, err := s.Store.GetTrophy(ctx, *m.TrophyID)
		if err != nil {
			return nil, fromStore(err)
		}
		half := trophy.Fee / 2
		for _, side := range [][]string{m.HomePlayers, roster} {
			perPlayer := half / int64(len(side))
			for _, playerID := range side {
				p, err := s.Store.GetPlayer(ctx, playerID)
				if err != nil {
					return nil, fromStore(err)
				}
				debits = append(debits, debit{player: p, amount: perPlayer})
			}
		}
	}

	m.AwayPlayers = roster
	m.Status = models.MatchUpcoming
	if err := s.replaceGuarded(ctx, m); err != nil {
		return nil, err
	}

	for _, d := range debits {
		d.player.Points -= d.amount
		if err := s.Store.UpsertPlayer(ctx, d.player); err != nil {
			return nil, fromStore(err)
		}
	}

	home, err := s.Store.GetTeam(ctx, m.HomeTeamID)
	if err == nil {
		Send(ctx, s.Notifier, []string{home.CaptainEmail}, "Match accepted",
			fmt.Sprintf("%s accepted your challenge", away.Name),
			map[string]string{"match_id": m.ID, "slug": m.Slug})
	}

	return m, nil
}

// replaceGuarded persists m and maps a lost CAS race to InvalidState:
// for the single-shot accept/reject path a conflict means someone else
// already moved the match on.
func (s *MatchService) replaceGuarded(ctx context.Context, m *models.Match) error {
	err := s.Store.ReplaceMatch(ctx, m, m.Version)
	if err == nil {
		return nil
	}
	if isVersionConflict(err) {
		return fmt.Errorf("%w: match %s was modified concurrently", ErrInvalidState, m.ID)
	}
	return fromStore(err)
}

// GetMatch fetches a match document by id.
func (s *MatchService) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.Store.GetMatch(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return m, nil
}

// ListByStatus scans matches in the given states; with no filter, all
// non-terminal states are returned.
func (s *MatchService) ListByStatus(ctx context.Context, statuses ...models.MatchStatus) ([]models.Match, error) {
	if len(statuses) == 0 {
		statuses = []models.MatchStatus{
			models.MatchPending, models.MatchUpcoming, models.MatchLive, models.MatchCompleted,
		}
	}
	matches, err := s.Store.MatchesByStatus(ctx, statuses...)
	if err != nil {
		return nil, fromStore(err)
	}
	return matches, nil
}
