// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

const (
	DefaultModel = "gpt-3.5-turbo"
	DefaultTitle = "New Chat"

	MaxTitleLength = 200
)

// KnownModels lists the model identifiers a chat may be created with.
var KnownModels = []string{
	"gpt-3.5-turbo",
	"gpt-4o",
	"gpt-4o-mini",
}

type Config struct {
	// DefaultModel is assigned when a chat is created without one.
	DefaultModel string

	// DefaultTitle is assigned until the first settled round derives a
	// real title.
	DefaultTitle string

	// SaveTimeout bounds each post-round persistence write.
	SaveTimeout time.Duration
}

func DefaultChatConfig() *Config {
	return &Config{
		DefaultModel: DefaultModel,
		DefaultTitle: DefaultTitle,
		SaveTimeout:  5 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model is required")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save_timeout must be positive")
	}
	return nil
}

// IsKnownModel reports whether model is one the service will accept.
func IsKnownModel(model string) bool {
	for _, m := range KnownModels {
		if m == model {
			return true
		}
	}
	return false
}
