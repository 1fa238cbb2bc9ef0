// File: internal/services/blog/config.go
package blog

import "fmt"

type Config struct {
	// Input limits, matched to the Post columns.
	TitleMaxLen    int
	SubtitleMaxLen int
	AuthorMaxLen   int

	DefaultCategory string

	// Listing configuration.
	DefaultPageSize int
	MaxPageSize     int
	FeaturedCount   int

	// SlugMaxLength is where generated slugs are truncated.
	SlugMaxLength int
}

func (c *Config) Validate() error {
	if c.TitleMaxLen <= 0 {
		return fmt.Errorf("title_max_len must be positive")
	}
	if c.DefaultCategory == "" {
		return fmt.Errorf("default_category is required")
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size must be within (0, max_page_size]")
	}
	if c.SlugMaxLength <= 0 {
		return fmt.Errorf("slug_max_length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		TitleMaxLen:     200,
		SubtitleMaxLen:  300,
		AuthorMaxLen:    100,
		DefaultCategory: "design",
		DefaultPageSize: 12,
		MaxPageSize:     100,
		FeaturedCount:   3,
		SlugMaxLength:   50,
	}
}
