// Package back implements the ranked matchmaking queue and the ELO rating
// ladder. It is the service layer consumed by the HTTP API and the periodic
// daemon, everything else (game rules, decks, profiles) lives elsewhere.
package back

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

type Back struct {
	db *sqlx.DB

	matches MatchCreator
	names   NameResolver
}

func New(sqlDriver string, sqlDSN string) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	if sqlDriver == "sqlite3" {
		sqlDSN = sqliteWriteDSN(sqlDSN)
	}

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	return &Back{
		db:      db,
		matches: matchStore{},
	}, nil
}

// sqliteWriteDSN makes write transactions take the database lock upfront and
// wait for it instead of failing with SQLITE_BUSY, concurrent joins would
// otherwise surface "database is locked" to the caller.
func sqliteWriteDSN(dsn string) string {
	if strings.Contains(dsn, "_txlock=") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_txlock=immediate&_busy_timeout=5000"
}

// SetMatchCreator overrides the collaborator that materializes a match once
// two players have been paired. The default writes a local Match row.
func (b *Back) SetMatchCreator(mc MatchCreator) {
	b.matches = mc
}

// SetNameResolver sets the collaborator used to enrich leaderboard entries
// with display names. Without one, every player shows up as a placeholder.
func (b *Back) SetNameResolver(nr NameResolver) {
	b.names = nr
}

func (b *Back) Run(wg *sync.WaitGroup, done <-chan struct{}) {
	wg.Add(1)
	defer wg.Done()
	log.Print("info: starting Back dæmon")

	for {
		if err := b.runPeriodicTasks(); err != nil {
			log.Printf("error: runPeriodicTasks: %s", err)
		}

		select {
		case <-time.After(1 * time.Minute):
		case <-done:
			return
		}
	}
}

func (b *Back) runPeriodicTasks() error {
	if _, err := b.SweepExpiredQueueEntries(time.Now()); err != nil {
		return err
	}

	return nil
}

type transactionCallback func(*sqlx.Tx) error

func (b *Back) transaction(cb transactionCallback) error {
	tx, err := b.db.Beginx()
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %s", err2, err)
		}

		return err
	}

	return tx.Commit()
}
