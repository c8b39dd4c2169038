package back // nolint:testpackage

import (
	"sync"
	"testing"
	"time"

	"arenaladder/internal/util"

	"github.com/jmoiron/sqlx"
)

func TestAcceptanceWindow(t *testing.T) {
	cases := []struct {
		waited   time.Duration
		expected int
	}{
		{0, 200},
		{1 * time.Second, 201},
		{2 * time.Minute, 350},
		{4 * time.Minute, 500},
		{10 * time.Minute, 500},
	}

	for k, v := range cases {
		if actual := acceptanceWindow(v.waited); actual != v.expected {
			t.Errorf("case #%d: expected window %d after %s, got %d", k, v.expected, v.waited, actual)
		}
	}

	for waited := time.Duration(0); waited < 5*time.Minute; waited += time.Second {
		if acceptanceWindow(waited+time.Second) < acceptanceWindow(waited) {
			t.Fatalf("window shrank at %s", waited)
		}
	}
}

func TestJoinQueueQueuesWhenAlone(t *testing.T) {
	back := createTestBack(t)
	player := util.NewUUIDAsBlob()

	res, err := back.JoinQueue(player, 1000, "deck-a", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Queued || res.MatchID.Valid {
		t.Errorf("expected to be queued without a match, got %+v", res)
	}

	status, err := back.GetQueueStatus(player)
	if err != nil {
		t.Fatal(err)
	}
	if !status.InQueue {
		t.Error("expected player to be in queue")
	}
}

func TestJoinQueuePairsEqualRatings(t *testing.T) {
	back := createTestBack(t)
	host, away := util.NewUUIDAsBlob(), util.NewUUIDAsBlob()
	now := time.Now()

	if _, err := back.JoinQueue(host, 1000, "deck-host", now); err != nil {
		t.Fatal(err)
	}

	res, err := back.JoinQueue(away, 1000, "deck-away", now.Add(1*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if res.Queued || !res.MatchID.Valid {
		t.Fatalf("expected an immediate match, got %+v", res)
	}

	var match Match
	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, res.MatchID.UUID)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	// The waiting player hosts, the joiner is away.
	if match.HostID != host || match.AwayID != away {
		t.Errorf("expected host %s and away %s, got %s and %s", host, away, match.HostID, match.AwayID)
	}
	if match.HostDeck != "deck-host" || match.AwayDeck != "deck-away" {
		t.Errorf("unexpected decks: %q, %q", match.HostDeck, match.AwayDeck)
	}

	for _, playerID := range []util.UUIDAsBlob{host, away} {
		status, err := back.GetQueueStatus(playerID)
		if err != nil {
			t.Fatal(err)
		}
		if status.InQueue {
			t.Errorf("expected %s to be out of the queue", playerID)
		}
	}
}

func TestJoinQueueRespectsWindow(t *testing.T) {
	back := createTestBack(t)
	high, low := util.NewUUIDAsBlob(), util.NewUUIDAsBlob()
	now := time.Now()

	if _, err := back.JoinQueue(high, 1500, "deck-a", now); err != nil {
		t.Fatal(err)
	}

	// 1400 points apart: out of reach even of the fully widened window.
	res, err := back.JoinQueue(low, 100, "deck-b", now.Add(10*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Queued {
		t.Fatalf("expected both players to stay queued, got %+v", res)
	}
}

func TestJoinQueueWindowWidensWithWaitTime(t *testing.T) {
	back := createTestBack(t)
	waiter, joiner := util.NewUUIDAsBlob(), util.NewUUIDAsBlob()
	now := time.Now()

	if _, err := back.JoinQueue(waiter, 1400, "deck-a", now); err != nil {
		t.Fatal(err)
	}

	// A 400 gap is outside the fresh ±200 window…
	res, err := back.JoinQueue(joiner, 1000, "deck-b", now.Add(1*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Queued {
		t.Fatalf("expected no match against a fresh entry, got %+v", res)
	}

	if err := back.LeaveQueue(joiner, now.Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}

	// …but within the ±500 one of an entry that waited four minutes.
	res, err = back.JoinQueue(joiner, 1000, "deck-b", now.Add(4*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if res.Queued || !res.MatchID.Valid {
		t.Fatalf("expected a match against the long-waiting entry, got %+v", res)
	}
}

func TestJoinQueuePrefersSmallestGap(t *testing.T) {
	back := createTestBack(t)
	far, near, joiner := util.NewUUIDAsBlob(), util.NewUUIDAsBlob(), util.NewUUIDAsBlob()
	now := time.Now()

	// 250 points apart, the two waiting entries cannot pair with each other,
	// but both sit within ±200 of the joiner.
	if _, err := back.JoinQueue(far, 1050, "deck-a", now); err != nil {
		t.Fatal(err)
	}
	if _, err := back.JoinQueue(near, 1300, "deck-b", now.Add(1*time.Second)); err != nil {
		t.Fatal(err)
	}

	res, err := back.JoinQueue(joiner, 1200, "deck-c", now.Add(2*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if res.Queued || !res.MatchID.Valid {
		t.Fatalf("expected a match, got %+v", res)
	}

	var match Match
	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, res.MatchID.UUID)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if match.HostID != near {
		t.Errorf("expected the closest-rated entry %s to host, got %s", near, match.HostID)
	}
}

func TestJoinQueueTieBreaksOnOldestEntry(t *testing.T) {
	back := createTestBack(t)
	older, newer, joiner := util.NewUUIDAsBlob(), util.NewUUIDAsBlob(), util.NewUUIDAsBlob()
	now := time.Now()

	// 240 points apart, the two waiting entries cannot pair with each other.
	if _, err := back.JoinQueue(older, 1080, "deck-a", now); err != nil {
		t.Fatal(err)
	}
	if _, err := back.JoinQueue(newer, 1320, "deck-b", now.Add(5*time.Second)); err != nil {
		t.Fatal(err)
	}

	// Both entries sit 120 points away, the one that waited longer wins.
	res, err := back.JoinQueue(joiner, 1200, "deck-c", now.Add(10*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if res.Queued || !res.MatchID.Valid {
		t.Fatalf("expected a match, got %+v", res)
	}

	var match Match
	if err := back.transaction(func(tx *sqlx.Tx) (err error) {
		match, err = getMatchByID(tx, res.MatchID.UUID)
		return err
	}); err != nil {
		t.Fatal(err)
	}
	if match.HostID != older {
		t.Errorf("expected the oldest entry %s to host, got %s", older, match.HostID)
	}
}

func TestJoinQueueRejectsDoubleJoin(t *testing.T) {
	back := createTestBack(t)
	player := util.NewUUIDAsBlob()
	now := time.Now()

	if _, err := back.JoinQueue(player, 1000, "deck-a", now); err != nil {
		t.Fatal(err)
	}

	_, err := back.JoinQueue(player, 1000, "deck-a", now.Add(1*time.Second))
	if err == nil {
		t.Fatal("expected an error when joining twice")
	}
	if !util.IsPublicError(err) {
		t.Errorf("expected a public error, got %s", err)
	}
}

func TestJoinQueueValidation(t *testing.T) {
	back := createTestBack(t)
	player := util.NewUUIDAsBlob()

	if _, err := back.JoinQueue(player, 1000, "", time.Now()); !util.IsPublicError(err) {
		t.Errorf("expected a public error for a missing deck, got %s", err)
	}
	if _, err := back.JoinQueue(player, -1, "deck-a", time.Now()); !util.IsPublicError(err) {
		t.Errorf("expected a public error for a negative rating, got %s", err)
	}

	status, err := back.GetQueueStatus(player)
	if err != nil {
		t.Fatal(err)
	}
	if status.InQueue {
		t.Error("expected rejected joins to leave no queue entry")
	}
}

func TestLeaveQueueIsIdempotent(t *testing.T) {
	back := createTestBack(t)
	player := util.NewUUIDAsBlob()
	now := time.Now()

	// Leaving without ever joining is a no-op, not an error.
	if err := back.LeaveQueue(player, now); err != nil {
		t.Fatal(err)
	}

	if _, err := back.JoinQueue(player, 1000, "deck-a", now); err != nil {
		t.Fatal(err)
	}
	if err := back.LeaveQueue(player, now.Add(1*time.Second)); err != nil {
		t.Fatal(err)
	}

	status, err := back.GetQueueStatus(player)
	if err != nil {
		t.Fatal(err)
	}
	if status.InQueue {
		t.Error("expected player to be out of the queue after leaving")
	}

	if err := back.LeaveQueue(player, now.Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}
}

func TestSweepExpiredQueueEntries(t *testing.T) {
	back := createTestBack(t)
	player := util.NewUUIDAsBlob()
	now := time.Now()

	if _, err := back.JoinQueue(player, 1000, "deck-a", now); err != nil {
		t.Fatal(err)
	}

	count, err := back.SweepExpiredQueueEntries(now.Add(4 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected nothing to expire after 4 minutes, got %d", count)
	}

	count, err = back.SweepExpiredQueueEntries(now.Add(QueueTimeout + time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 expired entry, got %d", count)
	}

	status, err := back.GetQueueStatus(player)
	if err != nil {
		t.Fatal(err)
	}
	if status.InQueue {
		t.Error("expected player to be out of the queue after the sweep")
	}

	// The expired entry is terminal, rejoining creates a fresh one.
	res, err := back.JoinQueue(player, 1000, "deck-a", now.Add(QueueTimeout+2*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Queued {
		t.Errorf("expected to be requeued, got %+v", res)
	}
}

func TestStaleEntriesAreNotClaimable(t *testing.T) {
	back := createTestBack(t)
	stale, joiner := util.NewUUIDAsBlob(), util.NewUUIDAsBlob()
	now := time.Now()

	if _, err := back.JoinQueue(stale, 1000, "deck-a", now); err != nil {
		t.Fatal(err)
	}

	// The entry aged past the timeout but was not swept yet: a joiner must
	// not pair against it.
	res, err := back.JoinQueue(joiner, 1000, "deck-b", now.Add(QueueTimeout+time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Queued {
		t.Fatalf("expected the stale entry to be skipped, got %+v", res)
	}

	count, err := back.SweepExpiredQueueEntries(now.Add(QueueTimeout + time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected the stale entry to expire, got %d", count)
	}
}

func TestConcurrentJoinsClaimAtMostOnce(t *testing.T) {
	back := createTestBack(t)
	now := time.Now()

	host := util.NewUUIDAsBlob()
	if _, err := back.JoinQueue(host, 1000, "deck-host", now); err != nil {
		t.Fatal(err)
	}

	const joiners = 8
	var wg sync.WaitGroup
	errs := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = back.JoinQueue(util.NewUUIDAsBlob(), 1000, "deck", now.Add(1*time.Second))
		}(i)
	}
	wg.Wait()

	if err := util.ConcatErrors(errs); err != nil {
		t.Fatal(err)
	}

	var matches []Match
	if err := back.transaction(func(tx *sqlx.Tx) error {
		return tx.Select(&matches, `SELECT * FROM Match`)
	}); err != nil {
		t.Fatal(err)
	}

	// 9 players total: 4 matches, one left waiting, nobody paired twice.
	if len(matches) != (joiners+1)/2 {
		t.Errorf("expected %d matches, got %d", (joiners+1)/2, len(matches))
	}

	seen := map[util.UUIDAsBlob]struct{}{}
	for k := range matches {
		for _, playerID := range []util.UUIDAsBlob{matches[k].HostID, matches[k].AwayID} {
			if _, ok := seen[playerID]; ok {
				t.Fatalf("player %s was paired twice", playerID)
			}
			seen[playerID] = struct{}{}
		}
	}

	var waiting int
	if err := back.transaction(func(tx *sqlx.Tx) error {
		return tx.Get(&waiting,
			`SELECT COUNT(*) FROM QueueEntry WHERE Status = ?`,
			QueueEntryStatusWaiting,
		)
	}); err != nil {
		t.Fatal(err)
	}
	if waiting != 1 {
		t.Errorf("expected exactly 1 waiting entry left, got %d", waiting)
	}
}
