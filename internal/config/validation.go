package config

import "fmt"

func validate(c *Config) error {
	if c.ScrapeTimeout <= 0 {
		return fmt.Errorf("scrape timeout must be > 0")
	}
	if c.Stagger < 0 {
		return fmt.Errorf("stagger must be >= 0")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	return nil
}
