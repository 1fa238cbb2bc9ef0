// File: internal/services/slug/generator.go

// Package slug derives URL-safe path segments from post titles. Titles may
// contain Han script; those characters are transliterated to pinyin, one
// reading per character, before the usual sanitize/truncate pipeline runs.
// The pipeline never fails: any internal error or too-short result falls
// back to a timestamp slug.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var validSlug = regexp.MustCompile(`^[a-z0-9-]+$`)

// stripMarks folds Latin diacritics ("Café" -> "Cafe") before sanitizing.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate converts a title into a URL-safe slug using default options.
func Generate(title string) string {
	return GenerateWithOptions(title, DefaultOptions())
}

// GenerateWithOptions converts a title into a URL-safe slug. The result
// matches ^[a-z0-9-]+$ with no leading or trailing separator, or is a
// FallbackPrefix+timestamp slug when the title yields nothing usable.
func GenerateWithOptions(title string, opts Options) (s string) {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	// Transliteration must never take down post creation.
	defer func() {
		if r := recover(); r != nil {
			s = Fallback()
		}
	}()

	if strings.TrimSpace(title) == "" {
		return Fallback()
	}

	candidate := transliterate(title, opts.Separator)
	s = sanitize(candidate, opts.Separator)
	s = truncate(s, opts.MaxLength, opts.Separator)

	if len(s) < MinLength {
		return Fallback()
	}
	return s
}

// Fallback returns the timestamp slug used when generation cannot produce a
// valid result.
func Fallback() string {
	return fmt.Sprintf("%s%d", FallbackPrefix, time.Now().UnixMilli())
}

// IsValid reports whether s satisfies the slug invariants: charset
// [a-z0-9-], length within [MinLength, MaxLength], and no leading or
// trailing separator. Usable for slugs obtained by any path, not only
// Generate.
func IsValid(s string) bool {
	if len(s) < MinLength || len(s) > MaxLength {
		return false
	}
	if strings.HasPrefix(s, DefaultSeparator) || strings.HasSuffix(s, DefaultSeparator) {
		return false
	}
	return validSlug.MatchString(s)
}

// transliterate converts the title into lowercase Latin tokens joined by the
// separator. Han characters become their primary pinyin reading, one token
// per character; runs of any other script are kept whole and have their
// diacritics folded.
func transliterate(title, sep string) string {
	args := pinyin.NewArgs() // plain style, no heteronym readings

	var tokens []string
	var latin strings.Builder
	flush := func() {
		if latin.Len() > 0 {
			tokens = append(tokens, latin.String())
			latin.Reset()
		}
	}

	for _, r := range title {
		if unicode.Is(unicode.Han, r) {
			flush()
			if readings := pinyin.SinglePinyin(r, args); len(readings) > 0 {
				tokens = append(tokens, readings[0])
			}
			continue
		}
		latin.WriteRune(r)
	}
	flush()

	joined := strings.ToLower(strings.Join(tokens, sep))
	if folded, _, err := transform.String(stripMarks, joined); err == nil {
		joined = folded
	}
	return joined
}

// sanitize replaces every character outside [a-z0-9-] with the separator,
// collapses separator runs, and trims the ends. Idempotent.
func sanitize(candidate, sep string) string {
	quoted := regexp.QuoteMeta(sep)
	s := regexp.MustCompile(`[^a-z0-9`+quoted+`]`).ReplaceAllString(candidate, sep)
	s = regexp.MustCompile(quoted+`{2,}`).ReplaceAllString(s, sep)
	return strings.Trim(s, sep)
}

// truncate cuts s at maxLength and then drops the trailing partial token so
// the result ends on a whole separator-delimited segment. A single token
// longer than maxLength has no boundary to fall back to and stays hard-cut.
func truncate(s string, maxLength int, sep string) string {
	if len(s) <= maxLength {
		return s
	}
	cut := s[:maxLength]
	if i := strings.LastIndex(cut, sep); i >= 0 {
		cut = cut[:i]
	}
	return cut
}
