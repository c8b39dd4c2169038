package main

import (
	"log"

	"arenaladder/internal/back"
	"arenaladder/internal/config"
)

func loadFixtures() {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		log.Fatalf("error: %s", err)
	}

	if err := migrateDatabase(); err != nil {
		log.Fatalf("error: %s", err)
	}

	b, err := back.New("sqlite3", conf.SQLDSN)
	if err != nil {
		log.Fatalf("error: %s", err)
	}

	if err := b.LoadFixtures(); err != nil {
		log.Fatalf("error: %s", err)
	}
}
