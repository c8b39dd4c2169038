package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"arenaladder/internal/back"
	"arenaladder/internal/config"
	"arenaladder/internal/util"
	"arenaladder/internal/web"
	"arenaladder/pkg/profileapi"
)

func serve(b *back.Back, conf *config.Config) error {
	var wg sync.WaitGroup
	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	if conf.ProfileAPIBaseURL != "" {
		b.SetNameResolver(profileNameResolver{
			api: profileapi.New(conf.ProfileAPIBaseURL, conf.ProfileAPIKey),
		})
	} else {
		log.Print("warning: no profile API configured, leaderboard names will be placeholders")
	}

	go b.Run(&wg, done)
	go web.NewServer(b, conf.HTTPListenAddr).Serve(&wg, done)

	sig := <-signaled
	log.Printf("received signal %d", sig)
	close(done)
	wg.Wait()

	log.Print("shutdown complete")

	return nil
}

// profileNameResolver adapts the profile API client to the collaborator
// interface the leaderboard expects.
type profileNameResolver struct {
	api *profileapi.API
}

func (r profileNameResolver) DisplayName(ctx context.Context, playerID util.UUIDAsBlob) (string, error) {
	name, err := r.api.DisplayName(ctx, playerID.UUID())
	if err == profileapi.ErrNotFound {
		// A missing profile is not an error, the caller falls back to a
		// placeholder.
		return "", nil
	}

	return name, err
}
