package back

import (
	"log"
	"math"
	"time"

	"arenaladder/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	// kFactorProvisional applies until a player has played
	// provisionalGamesCount ranked matches, so fresh ratings converge fast.
	kFactorProvisional    = 32
	kFactorEstablished    = 16
	provisionalGamesCount = 20
)

// RatingUpdate is the outcome of applying one completed match to the ladder.
type RatingUpdate struct {
	WinnerID        util.UUIDAsBlob `json:"winnerId"`
	LoserID         util.UUIDAsBlob `json:"loserId"`
	WinnerChange    int             `json:"winnerChange"`
	LoserChange     int             `json:"loserChange"`
	WinnerNewRating int             `json:"winnerNewRating"`
	LoserNewRating  int             `json:"loserNewRating"`
}

// expectedScore is the standard ELO win probability of a player rated p
// against an opponent rated q.
func expectedScore(p, q int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(q-p)/400.0))
}

func kFactor(gamesPlayed int) int {
	if gamesPlayed < provisionalGamesCount {
		return kFactorProvisional
	}

	return kFactorEstablished
}

func ratingChange(rating, opponentRating, gamesPlayed int, actual float64) int {
	k := float64(kFactor(gamesPlayed))
	return int(math.Round(k * (actual - expectedScore(rating, opponentRating))))
}

// applyRatingChange moves a ladder record by the given signed change,
// flooring the rating at zero and keeping the peak monotonic.
func (r *PlayerRating) applyRatingChange(change int, now time.Time) {
	r.Rating += change
	if r.Rating < 0 {
		r.Rating = 0
	}

	if r.Rating > r.PeakRating {
		r.PeakRating = r.Rating
	}

	r.GamesPlayed++
	r.UpdatedAt = util.TimeAsTimestamp(now)
}

// UpdateRatings applies the outcome of a completed match to both players'
// ladder records. Records are created on the fly for never-rated players.
// Both sides are persisted in the same transaction: either both moves are
// visible or neither is.
func (b *Back) UpdateRatings(winnerID, loserID util.UUIDAsBlob, now time.Time) (RatingUpdate, error) {
	if winnerID == loserID {
		return RatingUpdate{}, util.ErrPublic("a player can't win a match against themselves")
	}

	var ret RatingUpdate
	if err := b.transaction(func(tx *sqlx.Tx) error {
		winner, err := getPlayerRating(tx, winnerID, now)
		if err != nil {
			return err
		}
		loser, err := getPlayerRating(tx, loserID, now)
		if err != nil {
			return err
		}

		// Each side uses its own K and the opponent's pre-update rating.
		winnerRatingBefore, loserRatingBefore := winner.Rating, loser.Rating
		winnerChange := ratingChange(winnerRatingBefore, loserRatingBefore, winner.GamesPlayed, 1.0)
		loserChange := ratingChange(loserRatingBefore, winnerRatingBefore, loser.GamesPlayed, 0.0)

		winner.applyRatingChange(winnerChange, now)
		loser.applyRatingChange(loserChange, now)

		if err := winner.upsert(tx); err != nil {
			return err
		}
		if err := loser.upsert(tx); err != nil {
			return err
		}

		entries := []RatingHistoryEntry{
			NewRatingHistoryEntry(winnerID, winner.Rating, winnerChange, loserRatingBefore, MatchOutcomeWin, now),
			NewRatingHistoryEntry(loserID, loser.Rating, loserChange, winnerRatingBefore, MatchOutcomeLoss, now),
		}
		for k := range entries {
			if err := entries[k].insert(tx); err != nil {
				return err
			}
			if err := pruneRatingHistory(tx, entries[k].PlayerID); err != nil {
				return err
			}
		}

		ret = RatingUpdate{
			WinnerID:        winnerID,
			LoserID:         loserID,
			WinnerChange:    winnerChange,
			LoserChange:     loserChange,
			WinnerNewRating: winner.Rating,
			LoserNewRating:  loser.Rating,
		}

		return nil
	}); err != nil {
		return RatingUpdate{}, err
	}

	log.Printf(
		"info: rated match %s (%+d → %d) over %s (%+d → %d)",
		ret.WinnerID, ret.WinnerChange, ret.WinnerNewRating,
		ret.LoserID, ret.LoserChange, ret.LoserNewRating,
	)

	return ret, nil
}
