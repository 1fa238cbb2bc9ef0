// File: internal/services/slug/resolver.go
package slug

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ExistsFunc abstracts the persistence collaborator: it reports whether a
// post with the given slug already exists. Errors propagate out of
// ResolveUnique unchanged — silently accepting a possibly-duplicate slug is
// worse than failing post creation.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// maxSequentialProbes bounds the suffix search so adversarial title
// collisions cannot turn resolution into an unbounded loop of round-trips.
const maxSequentialProbes = 1000

// ResolveUnique probes candidate, candidate-1, candidate-2, ... against
// exists and returns the first unused value. Past maxSequentialProbes it
// gives up on sequential suffixes and appends a random one; the insert's
// unique constraint remains the authoritative check for that case, and the
// caller should retry resolution once on a duplicate-key conflict.
func ResolveUnique(ctx context.Context, candidate string, exists ExistsFunc) (string, error) {
	taken, err := exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("slug existence check: %w", err)
	}
	if !taken {
		return candidate, nil
	}

	for i := 1; i <= maxSequentialProbes; i++ {
		probe := fmt.Sprintf("%s-%d", candidate, i)
		taken, err := exists(ctx, probe)
		if err != nil {
			return "", fmt.Errorf("slug existence check: %w", err)
		}
		if !taken {
			return probe, nil
		}
	}

	return fmt.Sprintf("%s-%s", candidate, randomSuffix()), nil
}

func randomSuffix() string {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failures are effectively impossible; fall back to a
		// timestamp suffix rather than erroring.
		return fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	return hex.EncodeToString(b[:])
}
