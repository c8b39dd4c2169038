package back

import (
	"time"

	"arenaladder/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// RatingHistoryLength is how many entries we keep per player, oldest evicted
// first.
const RatingHistoryLength = 20

type MatchOutcome int

const ( // this is stored in DB, don't change values
	MatchOutcomeLoss MatchOutcome = -1
	MatchOutcomeWin  MatchOutcome = 1
)

// A RatingHistoryEntry is one line of a player's recent ladder history: the
// rating he landed on, how he got there, and against whom.
type RatingHistoryEntry struct {
	ID        util.UUIDAsBlob      `json:"id"`
	PlayerID  util.UUIDAsBlob      `json:"playerId"`
	CreatedAt util.TimeAsTimestamp `json:"createdAt"`

	Rating         int          `json:"rating"`
	Change         int          `json:"change"`
	OpponentRating int          `json:"opponentRating"`
	Outcome        MatchOutcome `json:"outcome"`
}

func NewRatingHistoryEntry(
	playerID util.UUIDAsBlob,
	rating, change, opponentRating int,
	outcome MatchOutcome,
	now time.Time,
) RatingHistoryEntry {
	return RatingHistoryEntry{
		ID:             util.NewUUIDAsBlob(),
		PlayerID:       playerID,
		CreatedAt:      util.TimeAsTimestamp(now),
		Rating:         rating,
		Change:         change,
		OpponentRating: opponentRating,
		Outcome:        outcome,
	}
}

func (e *RatingHistoryEntry) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("RatingHistory").SetMap(squirrel.Eq{
		"ID":             e.ID,
		"PlayerID":       e.PlayerID,
		"CreatedAt":      e.CreatedAt,
		"Rating":         e.Rating,
		"Change":         e.Change,
		"OpponentRating": e.OpponentRating,
		"Outcome":        e.Outcome,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// pruneRatingHistory drops everything but the RatingHistoryLength most recent
// entries of a player. Called in the same transaction as the insert so the
// bound holds at every commit.
func pruneRatingHistory(tx *sqlx.Tx, playerID util.UUIDAsBlob) error {
	_, err := tx.Exec(`
        DELETE FROM RatingHistory WHERE PlayerID = ? AND ID NOT IN (
            SELECT ID FROM RatingHistory WHERE PlayerID = ?
            ORDER BY CreatedAt DESC, rowid DESC LIMIT ?
        )`,
		playerID, playerID, RatingHistoryLength,
	)

	return err
}

// getRatingHistory returns a player's history, newest first.
func getRatingHistory(tx *sqlx.Tx, playerID util.UUIDAsBlob) ([]RatingHistoryEntry, error) {
	ret := make([]RatingHistoryEntry, 0, RatingHistoryLength)
	if err := tx.Select(&ret, `
        SELECT * FROM RatingHistory WHERE PlayerID = ?
        ORDER BY CreatedAt DESC, rowid DESC`,
		playerID,
	); err != nil {
		return nil, err
	}

	return ret, nil
}

// GetRatingHistory returns the bounded ladder history of a player, newest
// first. A player with no completed match has an empty history, not an error.
func (b *Back) GetRatingHistory(playerID util.UUIDAsBlob) ([]RatingHistoryEntry, error) {
	var ret []RatingHistoryEntry
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		ret, err = getRatingHistory(tx, playerID)
		return err
	}); err != nil {
		return nil, err
	}

	return ret, nil
}
