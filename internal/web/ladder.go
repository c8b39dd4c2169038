package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"arenaladder/internal/back"
	"arenaladder/internal/util"

	"github.com/google/uuid"
)

const defaultLeaderboardSize = 100

func (s *Server) postMatchResult(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		WinnerID uuid.UUID `json:"winnerId"`
		LoserID  uuid.UUID `json:"loserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.error(w, util.ErrPublic("malformed request body"), http.StatusBadRequest)
		return
	}

	update, err := s.back.UpdateRatings(
		util.UUIDAsBlob(payload.WinnerID),
		util.UUIDAsBlob(payload.LoserID),
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

	s.response(w, http.StatusOK, update)
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if str := r.URL.Query().Get("limit"); str != "" {
		parsed, err := strconv.Atoi(str)
		if err != nil || parsed <= 0 {
			s.error(w, util.ErrPublic("invalid limit"), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	leaderboard, err := s.back.GetLeaderboard(r.Context(), limit)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, leaderboard)
}

func (s *Server) getRankDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := s.back.GetRankDistribution()
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, distribution)
}

func (s *Server) getPlayerRating(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromURL(r)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	rating, err := s.back.GetMyRating(playerID)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	// Tier is derived, not stored, so it rides along explicitly.
	s.response(w, http.StatusOK, struct {
		back.PlayerRating
		Tier back.Tier `json:"tier"`
	}{rating, rating.Tier()})
}

func (s *Server) getPlayerRank(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromURL(r)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	rank, err := s.back.GetPlayerRank(playerID)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.response(w, http.StatusOK, rank)
}

func (s *Server) getPlayerHistory(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromURL(r)
	if err != nil {
		s.error(w, err, http.StatusBadRequest)
		return
	}

	history, err := s.back.GetRatingHistory(playerID)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.response(w, http.StatusOK, history)
}
