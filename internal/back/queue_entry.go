package back

import (
	"time"

	"arenaladder/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type QueueEntryStatus int

const ( // this is stored in DB, don't change values
	QueueEntryStatusWaiting QueueEntryStatus = 0
	QueueEntryStatusMatched QueueEntryStatus = 1 // terminal
	QueueEntryStatusExpired QueueEntryStatus = 2 // terminal, timeout or explicit leave
)

// A QueueEntry is one stint in the matchmaking queue. Entries are never
// reused: rejoining after a match or an expiry creates a new row.
// RatingSnapshot is the rating at join time and is deliberately not re-read
// during the wait, so a concurrent rating update can't retroactively move an
// already-computed acceptance window.
type QueueEntry struct {
	ID        util.UUIDAsBlob
	PlayerID  util.UUIDAsBlob
	JoinedAt  util.TimeAsTimestamp
	MatchedAt util.NullTimeAsTimestamp

	RatingSnapshot int
	DeckRef        string
	Status         QueueEntryStatus
	MatchID        util.NullUUIDAsBlob
}

func NewQueueEntry(playerID util.UUIDAsBlob, rating int, deckRef string, now time.Time) QueueEntry {
	return QueueEntry{
		ID:             util.NewUUIDAsBlob(),
		PlayerID:       playerID,
		JoinedAt:       util.TimeAsTimestamp(now),
		RatingSnapshot: rating,
		DeckRef:        deckRef,
		Status:         QueueEntryStatusWaiting,
	}
}

func (e *QueueEntry) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("QueueEntry").SetMap(squirrel.Eq{
		"ID":             e.ID,
		"PlayerID":       e.PlayerID,
		"JoinedAt":       e.JoinedAt,
		"MatchedAt":      e.MatchedAt,
		"RatingSnapshot": e.RatingSnapshot,
		"DeckRef":        e.DeckRef,
		"Status":         e.Status,
		"MatchID":        e.MatchID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// claim atomically transitions an entry from waiting to matched. It returns
// false without error when a concurrent joiner (or the janitor) got to the
// entry first, which is an expected race, not a failure.
func (e *QueueEntry) claim(tx *sqlx.Tx, now time.Time) (bool, error) {
	res, err := tx.Exec(`
        UPDATE QueueEntry SET Status = ?, MatchedAt = ?
        WHERE ID = ? AND Status = ?`,
		QueueEntryStatusMatched,
		util.NewNullTimeAsTimestamp(now),
		e.ID,
		QueueEntryStatusWaiting,
	)
	if err != nil {
		return false, err
	}

	cnt, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if cnt == 0 {
		return false, nil
	}

	e.Status = QueueEntryStatusMatched
	e.MatchedAt = util.NewNullTimeAsTimestamp(now)

	return true, nil
}

func (e *QueueEntry) setMatchID(tx *sqlx.Tx, matchID util.UUIDAsBlob) error {
	e.MatchID = util.NullUUIDAsBlob{UUID: matchID, Valid: true}
	if _, err := tx.Exec(
		`UPDATE QueueEntry SET MatchID = ? WHERE ID = ?`,
		e.MatchID, e.ID,
	); err != nil {
		return err
	}

	return nil
}

// getWaitingQueueEntries returns every waiting entry but the joiner's own,
// oldest first so long waiters get the tie-break.
func getWaitingQueueEntries(tx *sqlx.Tx, excludePlayerID util.UUIDAsBlob) ([]QueueEntry, error) {
	var ret []QueueEntry
	if err := tx.Select(&ret, `
        SELECT * FROM QueueEntry WHERE Status = ? AND PlayerID != ?
        ORDER BY JoinedAt ASC, rowid ASC`,
		QueueEntryStatusWaiting, excludePlayerID,
	); err != nil {
		return nil, err
	}

	return ret, nil
}

func hasWaitingQueueEntry(tx *sqlx.Tx, playerID util.UUIDAsBlob) (bool, error) {
	var count int
	if err := tx.Get(&count,
		`SELECT COUNT(*) FROM QueueEntry WHERE PlayerID = ? AND Status = ?`,
		playerID, QueueEntryStatusWaiting,
	); err != nil {
		return false, err
	}

	return count > 0, nil
}
