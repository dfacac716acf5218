package workers

import (
	"context"
	"testing"
	"time"

	"matchday-system/models"
	"matchday-system/services"
	"matchday-system/store"
)

func newSweeperFixture(t *testing.T) (*MatchSweeper, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	for _, team := range []*models.Team{
		{ID: "home", Name: "Home FC", CaptainEmail: "home@club.test"},
		{ID: "away", Name: "Away FC", CaptainEmail: "away@club.test"},
	} {
		if err := st.UpsertTeam(ctx, team); err != nil {
			t.Fatalf("seed team %s: %v", team.ID, err)
		}
	}
	notifier := services.NewStoreNotifier(st)
	settler := services.NewSettlementService(st, notifier, nil)
	return NewMatchSweeper(st, settler, notifier), st
}

func seedMatch(t *testing.T, st *store.MemoryStore, id string, status models.MatchStatus, start, end time.Time) {
	t.Helper()
	m := &models.Match{
		ID:         id,
		HomeTeamID: "home",
		AwayTeamID: "away",
		Status:     status,
		StartTime:  start,
		EndTime:    end,
	}
	if err := st.InsertMatch(context.Background(), m); err != nil {
		t.Fatalf("seed match %s: %v", id, err)
	}
}

func matchStatus(t *testing.T, st *store.MemoryStore, id string) models.MatchStatus {
	t.Helper()
	m, err := st.GetMatch(context.Background(), id)
	if err != nil {
		t.Fatalf("get match %s: %v", id, err)
	}
	return m.Status
}

func TestSweepPromotesUpcomingToLive(t *testing.T) {
	w, st := newSweeperFixture(t)
	now := time.Now()
	seedMatch(t, st, "m1", models.MatchUpcoming, now.Add(-time.Minute), now.Add(time.Hour))

	if err := w.SweepOnce(context.Background(), now); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := matchStatus(t, st, "m1"); got != models.MatchLive {
		t.Errorf("status = %s, want live", got)
	}
	if len(st.Notifications()) != 0 {
		t.Error("going live must not notify anyone")
	}
}

func TestSweepCompletesAtEndTime(t *testing.T) {
	w, st := newSweeperFixture(t)
	end := time.Now()
	seedMatch(t, st, "m1", models.MatchLive, end.Add(-2*time.Hour), end)

	// Exactly at the end boundary counts as ended.
	if err := w.SweepOnce(context.Background(), end); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := matchStatus(t, st, "m1"); got != models.MatchCompleted {
		t.Errorf("status = %s, want completed", got)
	}

	notes := st.Notifications()
	if len(notes) != 2 {
		t.Fatalf("notifications = %d, want one per captain", len(notes))
	}
	recipients := map[string]bool{}
	for _, n := range notes {
		recipients[n.Recipient] = true
	}
	if !recipients["home@club.test"] || !recipients["away@club.test"] {
		t.Errorf("recipients = %v, want both captains", recipients)
	}
}

func TestSweepSkipsUpcomingStraightToCompleted(t *testing.T) {
	// A match whose whole window elapsed between sweeps goes directly
	// to completed, never lingering in live.
	w, st := newSweeperFixture(t)
	now := time.Now()
	seedMatch(t, st, "m1", models.MatchUpcoming, now.Add(-2*time.Hour), now.Add(-time.Hour))

	if err := w.SweepOnce(context.Background(), now); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := matchStatus(t, st, "m1"); got != models.MatchCompleted {
		t.Errorf("status = %s, want completed", got)
	}
}

func TestSweepLeavesFutureAndForeignStates(t *testing.T) {
	w, st := newSweeperFixture(t)
	now := time.Now()
	seedMatch(t, st, "future", models.MatchUpcoming, now.Add(time.Hour), now.Add(2*time.Hour))
	seedMatch(t, st, "pending", models.MatchPending, now.Add(-time.Hour), now.Add(-time.Minute))
	seedMatch(t, st, "running", models.MatchLive, now.Add(-time.Hour), now.Add(time.Hour))

	if err := w.SweepOnce(context.Background(), now); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := matchStatus(t, st, "future"); got != models.MatchUpcoming {
		t.Errorf("future = %s, want untouched", got)
	}
	if got := matchStatus(t, st, "pending"); got != models.MatchPending {
		t.Errorf("pending = %s, the sweeper never touches unaccepted matches", got)
	}
	if got := matchStatus(t, st, "running"); got != models.MatchLive {
		t.Errorf("running = %s, want still live", got)
	}
}

func TestSweepSkipsZeroTimestamps(t *testing.T) {
	w, st := newSweeperFixture(t)
	seedMatch(t, st, "m1", models.MatchUpcoming, time.Time{}, time.Time{})

	if err := w.SweepOnce(context.Background(), time.Now()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := matchStatus(t, st, "m1"); got != models.MatchUpcoming {
		t.Errorf("status = %s, unscheduled matches must be left alone", got)
	}
}

func TestSweepFinalizesStalledCompletedMatch(t *testing.T) {
	// Both stat slots are filled but the finalizing write never landed:
	// the sweep settles the match and commits final.
	w, st := newSweeperFixture(t)
	ctx := context.Background()
	for _, id := range []string{"h1", "a1"} {
		p := &models.Player{ID: id, Email: id + "@club.test", Position: models.PositionMidfielder}
		if err := st.UpsertPlayer(ctx, p); err != nil {
			t.Fatalf("seed player %s: %v", id, err)
		}
	}
	now := time.Now()
	m := &models.Match{
		ID:          "stalled",
		HomeTeamID:  "home",
		AwayTeamID:  "away",
		HomePlayers: []string{"h1"},
		AwayPlayers: []string{"a1"},
		Status:      models.MatchCompleted,
		StartTime:   now.Add(-2 * time.Hour),
		EndTime:     now.Add(-time.Hour),

		HomeStatsSubmitted: true,
		AwayStatsSubmitted: true,
		HomeStats:          []models.PlayerStat{{PlayerID: "h1", Goals: 1}},
		AwayStats:          []models.PlayerStat{{PlayerID: "a1"}},
	}
	if err := st.InsertMatch(ctx, m); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	if err := w.SweepOnce(ctx, now); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	got, _ := st.GetMatch(ctx, "stalled")
	if got.Status != models.MatchFinal {
		t.Fatalf("status = %s, want final", got.Status)
	}
	if got.Result == nil || got.Result.Winner != "home" {
		t.Fatalf("result = %+v, want home win", got.Result)
	}
	h1, _ := st.GetPlayer(ctx, "h1")
	if h1.Matches != 1 {
		t.Errorf("h1 not settled: matches = %d", h1.Matches)
	}

	// A completed match still missing a submission is left alone.
	waiting := &models.Match{
		ID: "waiting", HomeTeamID: "home", AwayTeamID: "away",
		Status: models.MatchCompleted, StartTime: m.StartTime, EndTime: m.EndTime,
		HomeStatsSubmitted: true,
	}
	if err := st.InsertMatch(ctx, waiting); err != nil {
		t.Fatalf("seed match: %v", err)
	}
	if err := w.SweepOnce(ctx, now); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := matchStatus(t, st, "waiting"); got != models.MatchCompleted {
		t.Errorf("waiting match = %s, want still completed", got)
	}
}

func TestPruneNotifications(t *testing.T) {
	w, st := newSweeperFixture(t)
	ctx := context.Background()
	now := time.Now()

	old := &models.Notification{ID: "old", Recipient: "p1@club.test", CreatedAt: now.Add(-8 * 24 * time.Hour)}
	recent := &models.Notification{ID: "recent", Recipient: "p1@club.test", CreatedAt: now.Add(-time.Hour)}
	for _, n := range []*models.Notification{old, recent} {
		if err := st.InsertNotification(ctx, n); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	w.PruneNotifications(ctx, now)

	notes := st.Notifications()
	if len(notes) != 1 || notes[0].ID != "recent" {
		t.Errorf("remaining = %+v, want just the recent one", notes)
	}
}
