package web

import (
	"encoding/json"
	"net/http"
	"time"

	"arenaladder/internal/util"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

func (s *Server) joinQueue(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PlayerID uuid.UUID `json:"playerId"`
		Rating   int       `json:"rating"`
		DeckRef  string    `json:"deckRef"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, util.ErrPublic("malformed request body"), http.StatusBadRequest)
		return
	}

	res, err := s.back.JoinQueue(
		util.UUIDAsBlob(payload.PlayerID),
		payload.Rating,
		payload.DeckRef,
		time.Now(),
	)
	if err != nil {
		if util.IsPublicError(err) {
			s.error(w, err, http.StatusBadRequest)
		} else {
			s.error(w, err, http.StatusInternalServerError)
		}
		return
	}

	s.response(w, http.StatusOK, res)
}

func (s *Server) leaveQueue(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromURL(r)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	if err := s.back.LeaveQueue(playerID, time.Now()); err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getQueueStatus(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromURL(r)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	status, err := s.back.GetQueueStatus(playerID)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.response(w, http.StatusOK, status)
}

func playerIDFromURL(r *http.Request) (util.UUIDAsBlob, error) {
	id, err := uuid.Parse(chi.URLParam(r, "playerID"))
	if err != nil {
		return util.UUIDAsBlob{}, util.ErrPublic("invalid player id")
	}

	return util.UUIDAsBlob(id), nil
}
