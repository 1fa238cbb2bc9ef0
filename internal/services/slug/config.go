// File: internal/services/slug/config.go
package slug

const (
	// DefaultMaxLength is where generated slugs are truncated. Validation
	// accepts anything up to MaxLength so slugs supplied through other
	// paths (e.g. direct API input) have more room.
	DefaultMaxLength = 50
	MinLength        = 2
	MaxLength        = 100

	DefaultSeparator = "-"

	// FallbackPrefix starts every timestamp fallback slug.
	FallbackPrefix = "blog-"
)

// Options controls slug generation.
type Options struct {
	MaxLength int
	Separator string
}

func DefaultOptions() Options {
	return Options{
		MaxLength: DefaultMaxLength,
		Separator: DefaultSeparator,
	}
}
