// Package creds resolves per-portal login credentials. Lookup order:
// environment variables, the OS keyring, then the static values from the
// config file. The original deployment embedded credentials next to each
// portal's selectors; this keeps the per-portal scoping while getting the
// secrets out of the source tree.
package creds

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

// keyring service name shared by all portals.
const service = "tenderscrape"

// Credentials is one portal's login pair.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Source resolves credentials by scraper id.
type Source interface {
	Lookup(scraperID string) (Credentials, error)
}

// LayeredSource implements the env → keyring → config-file lookup chain.
type LayeredSource struct {
	// FromConfig holds credentials loaded from the config file, keyed by
	// scraper id. May be nil.
	FromConfig map[string]Credentials
}

// Lookup resolves credentials for a scraper id. It returns an error when no
// layer yields a complete pair; scrapers treat that as a permanent failure.
func (s *LayeredSource) Lookup(scraperID string) (Credentials, error) {
	prefix := "TENDERSCRAPE_" + strings.ToUpper(scraperID)
	c := Credentials{
		Username: os.Getenv(prefix + "_USERNAME"),
		Password: os.Getenv(prefix + "_PASSWORD"),
	}
	if c.complete() {
		return c, nil
	}

	if c.Username == "" {
		if v, err := keyring.Get(service, scraperID+"/username"); err == nil {
			c.Username = v
		}
	}
	if c.Password == "" {
		if v, err := keyring.Get(service, scraperID+"/password"); err == nil {
			c.Password = v
		}
	}
	if c.complete() {
		return c, nil
	}

	if s.FromConfig != nil {
		fromCfg := s.FromConfig[scraperID]
		if c.Username == "" {
			c.Username = fromCfg.Username
		}
		if c.Password == "" {
			c.Password = fromCfg.Password
		}
	}
	if c.complete() {
		return c, nil
	}

	log.Debug().Str("scraper", scraperID).Msg("No complete credentials found")
	return Credentials{}, fmt.Errorf("no credentials configured for %q (set %s_USERNAME/%s_PASSWORD, the keyring, or the config file)",
		scraperID, prefix, prefix)
}

func (c Credentials) complete() bool {
	return c.Username != "" && c.Password != ""
}

// Store saves a credential pair in the OS keyring.
func Store(scraperID string, c Credentials) error {
	if err := keyring.Set(service, scraperID+"/username", c.Username); err != nil {
		return fmt.Errorf("failed to store username: %w", err)
	}
	if err := keyring.Set(service, scraperID+"/password", c.Password); err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}
	return nil
}
