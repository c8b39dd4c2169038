package back

import (
	"database/sql"
	"time"

	"arenaladder/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// DefaultRating is the rating every player starts the ladder with.
const DefaultRating = 1000

// A PlayerRating is the ladder record of a single player. It is created
// lazily on the first rating update, never on account creation, and is only
// ever mutated by UpdateRatings.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob      `json:"playerId"`
	CreatedAt util.TimeAsTimestamp `json:"createdAt"`
	UpdatedAt util.TimeAsTimestamp `json:"updatedAt"`

	Rating      int `json:"rating"`
	PeakRating  int `json:"peakRating"`
	GamesPlayed int `json:"gamesPlayed"`
}

func NewPlayerRating(playerID util.UUIDAsBlob, now time.Time) PlayerRating {
	return PlayerRating{
		PlayerID:   playerID,
		CreatedAt:  util.TimeAsTimestamp(now),
		UpdatedAt:  util.TimeAsTimestamp(now),
		Rating:     DefaultRating,
		PeakRating: DefaultRating,
	}
}

func (r PlayerRating) Tier() Tier {
	return TierFromRating(r.Rating)
}

// getPlayerRating gets the current ladder record for a player or creates and
// returns a default one on the fly without persisting it.
func getPlayerRating(tx *sqlx.Tx, playerID util.UUIDAsBlob, now time.Time) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? LIMIT 1`
	if err := tx.Get(&ret, query, playerID); err != nil {
		if err == sql.ErrNoRows {
			return NewPlayerRating(playerID, now), nil
		}
		return PlayerRating{}, err
	}

	return ret, nil
}

func hasPlayerRating(tx *sqlx.Tx, playerID util.UUIDAsBlob) (bool, error) {
	var count int
	if err := tx.Get(&count,
		`SELECT COUNT(*) FROM PlayerRating WHERE PlayerID = ?`,
		playerID,
	); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *PlayerRating) upsert(tx *sqlx.Tx) error {
	exists, err := hasPlayerRating(tx, r.PlayerID)
	if err != nil {
		return err
	}

	if !exists {
		query, args, err := squirrel.Insert("PlayerRating").SetMap(squirrel.Eq{
			"PlayerID":    r.PlayerID,
			"CreatedAt":   r.CreatedAt,
			"UpdatedAt":   r.UpdatedAt,
			"Rating":      r.Rating,
			"PeakRating":  r.PeakRating,
			"GamesPlayed": r.GamesPlayed,
		}).ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(query, args...)
		return err
	}

	query, args, err := squirrel.Update("PlayerRating").SetMap(squirrel.Eq{
		"UpdatedAt":   r.UpdatedAt,
		"Rating":      r.Rating,
		"PeakRating":  r.PeakRating,
		"GamesPlayed": r.GamesPlayed,
	}).Where("PlayerRating.PlayerID = ?", r.PlayerID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

// GetMyRating returns the ladder record of a player, or the default record if
// the player never completed a ranked match.
func (b *Back) GetMyRating(playerID util.UUIDAsBlob) (PlayerRating, error) {
	var ret PlayerRating
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		ret, err = getPlayerRating(tx, playerID, time.Now())
		return err
	}); err != nil {
		return PlayerRating{}, err
	}

	return ret, nil
}
