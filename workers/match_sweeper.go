// workers/match_sweeper.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"matchday-system/models"
	"matchday-system/services"
	"matchday-system/store"
)

// notificationRetention is how long player notifications are kept
// before the daily prune removes them.
const notificationRetention = 7 * 24 * time.Hour

// MatchSweeper advances matches between time-bound states purely from
// wall-clock time: upcoming→live at start, {upcoming,live}→completed at
// end. It also re-drives settlement for completed matches whose both
// stat slots are filled but whose finalization never committed.
type MatchSweeper struct {
	Store    store.Store
	Settler  *services.SettlementService
	Notifier services.Notifier
}

func NewMatchSweeper(st store.Store, settler *services.SettlementService, n services.Notifier) *MatchSweeper {
	return &MatchSweeper{Store: st, Settler: settler, Notifier: n}
}

// Start registers the recurring jobs: the transition sweep every minute
// and the notification prune every 24 hours.
func (w *MatchSweeper) Start(ctx context.Context) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := w.SweepOnce(ctx, time.Now()); err != nil {
				log.Printf("[SWEEPER] ❌ sweep failed: %v", err)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			w.PruneNotifications(ctx, time.Now())
		}),
	)

	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()
}

// SweepOnce scans all matches in upcoming/live/completed and applies
// any due clock transition or stalled finalization. One row's failure
// never aborts the rest of the sweep; lost CAS races are skipped
// (another actor already moved the match).
func (w *MatchSweeper) SweepOnce(ctx context.Context, now time.Time) error {
	matches, err := w.Store.MatchesByStatus(ctx, models.MatchUpcoming, models.MatchLive, models.MatchCompleted)
	if err != nil {
		return fmt.Errorf("sweep scan: %w", err)
	}

	for i := range matches {
		m := matches[i]
		if err := w.sweepMatch(ctx, &m, now); err != nil {
			log.Printf("[SWEEPER] ⚠️ match %s: %v", m.ID, err)
		}
	}
	return nil
}

func (w *MatchSweeper) sweepMatch(ctx context.Context, m *models.Match, now time.Time) error {
	if m.Status == models.MatchCompleted {
		if m.HomeStatsSubmitted && m.AwayStatsSubmitted {
			return w.finalizeStalled(ctx, m)
		}
		return nil // waiting on the captains
	}

	if m.StartTime.IsZero() || m.EndTime.IsZero() {
		log.Printf("[SWEEPER] ⚠️ match %s: missing schedule timestamps, skipped", m.ID)
		return nil
	}

	var next models.MatchStatus
	switch {
	case !now.Before(m.EndTime):
		next = models.MatchCompleted
	case m.Status == models.MatchUpcoming && !now.Before(m.StartTime):
		next = models.MatchLive
	default:
		return nil // not due yet
	}

	if !services.CanTransition(m.Status, next) {
		return nil
	}

	prev := m.Status
	m.Status = next
	if err := w.Store.ReplaceMatch(ctx, m, m.Version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil // someone else advanced this match first
		}
		return err
	}
	log.Printf("[SWEEPER] ✅ match %s: %s → %s", m.ID, prev, next)

	if next == models.MatchCompleted {
		w.notifyCaptains(ctx, m)
	}
	return nil
}

// finalizeStalled re-drives settlement for a match whose second
// submission committed but whose finalizing write never landed.
// Settlement skips participants it already processed, so this is safe
// to repeat every sweep until the status write sticks.
func (w *MatchSweeper) finalizeStalled(ctx context.Context, m *models.Match) error {
	result, err := w.Settler.Settle(ctx, m)
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	m.Result = result
	m.Status = models.MatchFinal
	if err := w.Store.ReplaceMatch(ctx, m, m.Version); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil // someone else finalized first
		}
		return err
	}
	log.Printf("[SWEEPER] ✅ match %s: finalized %d-%d", m.ID, result.HomeGoals, result.AwayGoals)
	return nil
}

// notifyCaptains asks both captains for their stat submissions once a
// match completes. Best-effort.
func (w *MatchSweeper) notifyCaptains(ctx context.Context, m *models.Match) {
	var captains []string
	for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
		t, err := w.Store.GetTeam(ctx, teamID)
		if err != nil {
			log.Printf("[SWEEPER] ⚠️ match %s: team %s lookup failed: %v", m.ID, teamID, err)
			continue
		}
		captains = append(captains, t.CaptainEmail)
	}
	services.Send(ctx, w.Notifier, captains, "Submit your stats",
		"Your match has ended — submit your team's stats to settle the result",
		map[string]string{"match_id": m.ID, "slug": m.Slug})
}

// PruneNotifications removes player notifications older than the
// retention window.
func (w *MatchSweeper) PruneNotifications(ctx context.Context, now time.Time) {
	removed, err := w.Store.DeleteNotificationsBefore(ctx, now.Add(-notificationRetention))
	if err != nil {
		log.Printf("[SWEEPER] ❌ notification prune failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[SWEEPER] 🧹 pruned %d stale notification(s)", removed)
	}
}
