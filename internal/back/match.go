package back

import (
	"time"

	"arenaladder/internal/util"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A Match is the record handed over to the game engine once two players are
// paired. This subsystem only ever creates matches, playing them out and
// reporting their outcome belong to the engine.
type Match struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp

	HostID   util.UUIDAsBlob
	AwayID   util.UUIDAsBlob
	HostDeck string
	AwayDeck string
}

// MatchCreator materializes a match from two claimed queue entries and
// returns its id. It runs inside the pairing transaction so a failed match
// creation also rolls the claim back.
type MatchCreator interface {
	CreateMatch(tx *sqlx.Tx, hostID, awayID util.UUIDAsBlob, hostDeck, awayDeck string) (util.UUIDAsBlob, error)
}

// matchStore is the default MatchCreator, writing a local Match row.
type matchStore struct{}

func (matchStore) CreateMatch(
	tx *sqlx.Tx,
	hostID, awayID util.UUIDAsBlob,
	hostDeck, awayDeck string,
) (util.UUIDAsBlob, error) {
	match := Match{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		HostID:    hostID,
		AwayID:    awayID,
		HostDeck:  hostDeck,
		AwayDeck:  awayDeck,
	}

	query, args, err := squirrel.Insert("Match").SetMap(squirrel.Eq{
		"ID":        match.ID,
		"CreatedAt": match.CreatedAt,
		"HostID":    match.HostID,
		"AwayID":    match.AwayID,
		"HostDeck":  match.HostDeck,
		"AwayDeck":  match.AwayDeck,
	}).ToSql()
	if err != nil {
		return util.UUIDAsBlob{}, err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return util.UUIDAsBlob{}, err
	}

	return match.ID, nil
}

func getMatchByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Match, error) {
	var ret Match
	query := `SELECT * FROM Match WHERE Match.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Match{}, err
	}

	return ret, nil
}
