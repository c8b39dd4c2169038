package main

import (
	"log"

	"arenaladder/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func migrateDatabase() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	migrator, err := migrate.New(
		"file://resources/migrations",
		"sqlite3://"+conf.SQLDSN,
	)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Print("debug: database schema is up to date")
			return nil
		}

		return err
	}

	log.Print("info: database schema migrated")

	return nil
}
