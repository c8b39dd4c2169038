package back

import (
	"log"
	"time"

	"arenaladder/internal/util"
)

// LoadFixtures seeds the ladder with a small population for development:
// replayed matches so ratings spread over several tiers, plus one player left
// waiting in the queue. Ratings are only ever produced by the engine, so the
// seed goes through UpdateRatings like everything else.
func (b *Back) LoadFixtures() error {
	players := make([]util.UUIDAsBlob, 8)
	for k := range players {
		players[k] = util.NewUUIDAsBlob()
	}

	// Lower indices win more often, spreading players out on the ladder.
	now := time.Now().Add(-24 * time.Hour)
	for round := 0; round < 16; round++ {
		for i := 0; i < len(players); i++ {
			for j := i + 1; j < len(players); j++ {
				winner, loser := players[i], players[j]
				if (round+i+j)%4 == 0 {
					winner, loser = loser, winner
				}

				if _, err := b.UpdateRatings(winner, loser, now); err != nil {
					return err
				}
				now = now.Add(1 * time.Minute)
			}
		}
	}

	rating, err := b.GetMyRating(players[0])
	if err != nil {
		return err
	}

	if _, err := b.JoinQueue(players[0], rating.Rating, "fixture-deck", time.Now()); err != nil {
		return err
	}

	for k := range players {
		log.Printf("info: fixture player %s", players[k])
	}

	return nil
}
