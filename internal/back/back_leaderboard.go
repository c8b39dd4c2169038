package back

import (
	"context"
	"log"
	"time"

	"arenaladder/internal/util"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// PlaceholderName is displayed when the profile service can't give us a
// display name. Name resolution must never fail a leaderboard query.
const PlaceholderName = "Unknown"

// NameResolver is the external user-profile collaborator. Only the
// leaderboard uses it, the ladder itself works on player ids.
type NameResolver interface {
	DisplayName(ctx context.Context, playerID util.UUIDAsBlob) (string, error)
}

type LeaderboardEntry struct {
	PlayerID    util.UUIDAsBlob `json:"playerId"`
	DisplayName string          `json:"displayName"`
	Rating      int             `json:"rating"`
	PeakRating  int             `json:"peakRating"`
	Tier        Tier            `json:"tier"`
	GamesPlayed int             `json:"gamesPlayed"`
}

// GetLeaderboard returns the top limit players by rating, enriched with
// display names from the profile collaborator.
func (b *Back) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, util.ErrPublic("leaderboard size must be positive")
	}

	var ratings []PlayerRating
	if err := b.transaction(func(tx *sqlx.Tx) error {
		return tx.Select(&ratings, `
            SELECT * FROM PlayerRating
            ORDER BY Rating DESC, GamesPlayed DESC LIMIT ?`,
			limit,
		)
	}); err != nil {
		return nil, err
	}

	ret := make([]LeaderboardEntry, 0, len(ratings))
	for k := range ratings {
		ret = append(ret, LeaderboardEntry{
			PlayerID:    ratings[k].PlayerID,
			DisplayName: b.resolveName(ctx, ratings[k].PlayerID),
			Rating:      ratings[k].Rating,
			PeakRating:  ratings[k].PeakRating,
			Tier:        ratings[k].Tier(),
			GamesPlayed: ratings[k].GamesPlayed,
		})
	}

	return ret, nil
}

func (b *Back) resolveName(ctx context.Context, playerID util.UUIDAsBlob) string {
	if b.names == nil {
		return PlaceholderName
	}

	name, err := b.names.DisplayName(ctx, playerID)
	if err != nil {
		log.Printf("warning: unable to resolve name for %s: %s", playerID, err)
		return PlaceholderName
	}
	if name == "" {
		return PlaceholderName
	}

	return name
}

// PlayerRank is a player's position on the ladder. Rank is null for a player
// who never completed a ranked match, his default rating/tier still show.
type PlayerRank struct {
	PlayerID util.UUIDAsBlob `json:"playerId"`
	Rating   int             `json:"rating"`
	Tier     Tier            `json:"tier"`
	Rank     null.Int        `json:"rank"`
}

// GetPlayerRank returns 1 + the count of players with a strictly greater
// rating, standard competition ranking.
func (b *Back) GetPlayerRank(playerID util.UUIDAsBlob) (PlayerRank, error) {
	ret := PlayerRank{PlayerID: playerID}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		rated, err := hasPlayerRating(tx, playerID)
		if err != nil {
			return err
		}

		rating, err := getPlayerRating(tx, playerID, time.Now())
		if err != nil {
			return err
		}
		ret.Rating = rating.Rating
		ret.Tier = rating.Tier()

		if !rated {
			return nil
		}

		var above int
		if err := tx.Get(&above,
			`SELECT COUNT(*) FROM PlayerRating WHERE Rating > ?`,
			rating.Rating,
		); err != nil {
			return err
		}
		ret.Rank = null.IntFrom(int64(above) + 1)

		return nil
	}); err != nil {
		return PlayerRank{}, err
	}

	return ret, nil
}

type TierCount struct {
	Tier  Tier `json:"tier"`
	Count int  `json:"count"`
}

type RankDistribution struct {
	Tiers []TierCount `json:"tiers"`
	Total int         `json:"total"`
}

// GetRankDistribution counts rated players per tier. Tier bounds live in Go,
// so the counts are computed from the same thresholds TierFromRating uses.
func (b *Back) GetRankDistribution() (RankDistribution, error) {
	ret := RankDistribution{Tiers: make([]TierCount, 0, len(Tiers()))}

	if err := b.transaction(func(tx *sqlx.Tx) error {
		for _, tier := range Tiers() {
			min, max := tierRatingRange(tier)

			var (
				count int
				err   error
			)
			if max < 0 {
				err = tx.Get(&count,
					`SELECT COUNT(*) FROM PlayerRating WHERE Rating >= ?`, min)
			} else {
				err = tx.Get(&count,
					`SELECT COUNT(*) FROM PlayerRating WHERE Rating >= ? AND Rating < ?`, min, max)
			}
			if err != nil {
				return err
			}

			ret.Tiers = append(ret.Tiers, TierCount{Tier: tier, Count: count})
			ret.Total += count
		}

		return nil
	}); err != nil {
		return RankDistribution{}, err
	}

	return ret, nil
}
