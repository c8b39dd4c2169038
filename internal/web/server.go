// Package web exposes the ladder operations as a small JSON API consumed by
// the game's application layer. It owns no logic: decode, call back, encode.
package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"arenaladder/internal/back"
	"arenaladder/internal/util"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", noContent)

	r.Post("/v1/queue", s.joinQueue)
	r.Delete("/v1/queue/{playerID}", s.leaveQueue)
	r.Get("/v1/queue/{playerID}", s.getQueueStatus)

	r.Post("/v1/results", s.postMatchResult)

	r.Get("/v1/leaderboard", s.getLeaderboard)
	r.Get("/v1/ranks", s.getRankDistribution)
	r.Get("/v1/player/{playerID}/rating", s.getPlayerRating)
	r.Get("/v1/player/{playerID}/rank", s.getPlayerRank)
	r.Get("/v1/player/{playerID}/history", s.getPlayerHistory)

	return r
}

type Server struct {
	http *http.Server
	back *back.Back
}

func NewServer(back *back.Back, addr string) *Server {
	s := &Server{
		back: back,
	}

	s.http = &http.Server{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting HTTP server")
	wg.Add(1)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

// error writes a public error message with the given code, anything
// non-public is logged and degraded to a bare status code.
func (s *Server) error(w http.ResponseWriter, err error, code int) {
	if util.IsPublicError(err) {
		s.response(w, code, map[string]string{"error": err.Error()})
		return
	}

	log.Printf("error: %s", err)
	w.WriteHeader(code)
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}
