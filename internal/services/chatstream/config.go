// File: internal/services/chatstream/config.go
package chatstream

import (
	"fmt"
	"time"
)

type Config struct {
	// Title derivation from the first user message.
	TitleMaxChars int
	TitleEllipsis string

	// Timeout for the post-stream persistence writes, which run on their
	// own context so a closed request cannot cancel them.
	SaveTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.TitleMaxChars <= 0 {
		return fmt.Errorf("title_max_chars must be positive")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save_timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		TitleMaxChars: 50,
		TitleEllipsis: "...",
		SaveTimeout:   5 * time.Second,
	}
}
