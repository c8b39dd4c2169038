package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type Config struct {
	// HTTPListenAddr is where the JSON API binds, keep it behind a reverse
	// proxy.
	HTTPListenAddr string

	// SQLDSN is the path to the sqlite3 database file.
	SQLDSN string

	// Profile service used to resolve display names on the leaderboard.
	ProfileAPIBaseURL string
	ProfileAPIKey     string
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{
		HTTPListenAddr: "127.0.0.1:3001",
		SQLDSN:         "./arena.db",
	}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"ARENA_HTTP_LISTEN_ADDR", &c.HTTPListenAddr},
		{"ARENA_SQL_DSN", &c.SQLDSN},
		{"ARENA_PROFILE_API_BASE_URL", &c.ProfileAPIBaseURL},
		{"ARENA_PROFILE_API_KEY", &c.ProfileAPIKey},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "arena")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o700)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
