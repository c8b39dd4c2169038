package back

import (
	"log"
	"time"

	"arenaladder/internal/util"

	"github.com/jmoiron/sqlx"
)

// SweepExpiredQueueEntries expires every waiting entry older than the queue
// timeout and returns how many it touched. The status guard makes it safe to
// race against JoinQueue: an entry being claimed at the same moment ends up
// either matched or expired, never both.
func (b *Back) SweepExpiredQueueEntries(now time.Time) (int, error) {
	var count int
	if err := b.transaction(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(`
            UPDATE QueueEntry SET Status = ?
            WHERE Status = ? AND JoinedAt <= ?`,
			QueueEntryStatusExpired,
			QueueEntryStatusWaiting,
			util.TimeAsTimestamp(now.Add(-QueueTimeout)),
		)
		if err != nil {
			return err
		}

		cnt, err := res.RowsAffected()
		if err != nil {
			return err
		}
		count = int(cnt)

		return nil
	}); err != nil {
		return 0, err
	}

	if count > 0 {
		log.Printf("info: marked %d queue entries as expired", count)
	}

	return count, nil
}
