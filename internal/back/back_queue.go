package back

import (
	"log"
	"sort"
	"time"

	"arenaladder/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	// queueWindowBase is the half-width of the acceptance window at join
	// time, queueWindowMax the cap it linearly grows to over queueWindowRamp.
	queueWindowBase = 200
	queueWindowMax  = 500
	queueWindowRamp = 4 * time.Minute

	// QueueTimeout is how long an entry may wait before the janitor expires
	// it. Claims also refuse entries past it, the sweep is only a cleanup.
	QueueTimeout = 5 * time.Minute
)

// acceptanceWindow returns the maximum rating gap an entry that has waited
// for the given duration accepts. Grows linearly from ±200 to ±500 over four
// minutes, a long waiter becomes matchable against a much wider range.
func acceptanceWindow(waited time.Duration) int {
	if waited <= 0 {
		return queueWindowBase
	}
	if waited >= queueWindowRamp {
		return queueWindowMax
	}

	return queueWindowBase + int(
		float64(queueWindowMax-queueWindowBase)*(waited.Seconds()/queueWindowRamp.Seconds()),
	)
}

// JoinResult is the outcome of a JoinQueue call: either the player was paired
// on the spot (MatchID is set) or he is now waiting in the queue.
type JoinResult struct {
	Queued  bool                `json:"queued"`
	MatchID util.NullUUIDAsBlob `json:"matchId"`
}

// QueueStatus reports whether a player currently waits in the queue.
type QueueStatus struct {
	InQueue bool                     `json:"inQueue"`
	Since   util.NullTimeAsTimestamp `json:"since"`
}

type queueCandidate struct {
	entry QueueEntry
	gap   int
}

// JoinQueue pairs the player against the best compatible waiting entry or
// inserts him as a new waiting entry. The joiner is evaluated once against
// each candidate's own current window, he does not get a widened window of
// his own on this first lookup.
func (b *Back) JoinQueue(
	playerID util.UUIDAsBlob,
	rating int,
	deckRef string,
	now time.Time,
) (JoinResult, error) {
	if deckRef == "" {
		return JoinResult{}, util.ErrPublic("you can't join the queue without a deck")
	}
	if rating < 0 {
		return JoinResult{}, util.ErrPublic("invalid rating")
	}

	var ret JoinResult
	if err := b.transaction(func(tx *sqlx.Tx) error {
		if waiting, err := hasWaitingQueueEntry(tx, playerID); err != nil {
			return err
		} else if waiting {
			return util.ErrPublic("you are already in the matchmaking queue")
		}

		candidates, err := getQueueCandidates(tx, playerID, rating, now)
		if err != nil {
			return err
		}

		for k := range candidates {
			opponent := candidates[k].entry
			claimed, err := opponent.claim(tx, now)
			if err != nil {
				return err
			}
			if !claimed {
				// Lost the race against another joiner or the janitor, try
				// the next candidate.
				continue
			}

			matchID, err := b.matches.CreateMatch(
				tx,
				opponent.PlayerID, playerID,
				opponent.DeckRef, deckRef,
			)
			if err != nil {
				return err
			}

			if err := opponent.setMatchID(tx, matchID); err != nil {
				return err
			}

			// The joiner gets its own terminal entry for bookkeeping, a
			// future rejoin creates a fresh row.
			own := NewQueueEntry(playerID, rating, deckRef, now)
			own.Status = QueueEntryStatusMatched
			own.MatchedAt = util.NewNullTimeAsTimestamp(now)
			own.MatchID = util.NullUUIDAsBlob{UUID: matchID, Valid: true}
			if err := own.insert(tx); err != nil {
				return err
			}

			log.Printf(
				"info: paired %s (%d) against %s (%d) in match %s",
				playerID, rating, opponent.PlayerID, opponent.RatingSnapshot, matchID,
			)

			ret = JoinResult{MatchID: own.MatchID}
			return nil
		}

		entry := NewQueueEntry(playerID, rating, deckRef, now)
		if err := entry.insert(tx); err != nil {
			return err
		}

		ret = JoinResult{Queued: true}
		return nil
	}); err != nil {
		return JoinResult{}, err
	}

	return ret, nil
}

// getQueueCandidates returns the waiting entries the joiner may pair with,
// best first: smallest rating gap, ties broken by earliest join. Entries past
// the queue timeout are skipped even if the janitor has not swept them yet.
func getQueueCandidates(
	tx *sqlx.Tx,
	playerID util.UUIDAsBlob,
	rating int,
	now time.Time,
) ([]queueCandidate, error) {
	waiting, err := getWaitingQueueEntries(tx, playerID)
	if err != nil {
		return nil, err
	}

	candidates := make([]queueCandidate, 0, len(waiting))
	for k := range waiting {
		waited := now.Sub(waiting[k].JoinedAt.Time())
		if waited > QueueTimeout {
			continue
		}

		gap := waiting[k].RatingSnapshot - rating
		if gap < 0 {
			gap = -gap
		}
		if gap > acceptanceWindow(waited) {
			continue
		}

		candidates = append(candidates, queueCandidate{entry: waiting[k], gap: gap})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].gap != candidates[j].gap {
			return candidates[i].gap < candidates[j].gap
		}
		return candidates[i].entry.JoinedAt.Time().Before(candidates[j].entry.JoinedAt.Time())
	})

	return candidates, nil
}

// LeaveQueue expires the player's waiting entry. Leaving without being queued
// is a no-op, not an error.
func (b *Back) LeaveQueue(playerID util.UUIDAsBlob, now time.Time) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`
            UPDATE QueueEntry SET Status = ?
            WHERE PlayerID = ? AND Status = ?`,
			QueueEntryStatusExpired, playerID, QueueEntryStatusWaiting,
		)
		if err != nil {
			return err
		}

		if cnt, err := res.RowsAffected(); cnt > 0 && err == nil {
			log.Printf("info: player %s left the queue", playerID)
		}

		return nil
	})
}

func (b *Back) GetQueueStatus(playerID util.UUIDAsBlob) (QueueStatus, error) {
	var ret QueueStatus
	if err := b.transaction(func(tx *sqlx.Tx) error {
		var entries []QueueEntry
		if err := tx.Select(&entries, `
            SELECT * FROM QueueEntry WHERE PlayerID = ? AND Status = ?
            ORDER BY JoinedAt DESC LIMIT 1`,
			playerID, QueueEntryStatusWaiting,
		); err != nil {
			return err
		}

		if len(entries) > 0 {
			ret.InQueue = true
			ret.Since = util.NewNullTimeAsTimestamp(entries[0].JoinedAt.Time())
		}

		return nil
	}); err != nil {
		return QueueStatus{}, err
	}

	return ret, nil
}
