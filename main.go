package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"arenaladder/internal/back"
	"arenaladder/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	switch flag.Arg(0) {
	case "version":
		fmt.Fprintf(os.Stdout, "Arena %s\n", Version)
	case "migrate":
		if err := migrateDatabase(); err != nil {
			log.Fatalf("error: %s", err)
		}
	case "serve":
		if err := runServe(); err != nil {
			log.Fatalf("error: %s", err)
		}
	case "dev:fixtures":
		loadFixtures()
	case "help":
		fmt.Fprint(os.Stdout, help())
		return
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}
}

func runServe() error {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return err
	}

	if err := migrateDatabase(); err != nil {
		return err
	}

	b, err := back.New("sqlite3", conf.SQLDSN)
	if err != nil {
		return err
	}

	return serve(b, conf)
}

func help() string {
	return fmt.Sprintf(`
Arena is the ranked matchmaking and rating ladder daemon of the card game.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      upgrade the database schema to the current version
    serve        run the matchmaking daemon and its HTTP API
    version      display the current version
`,
		os.Args[0],
	)
}
