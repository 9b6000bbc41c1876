// Package shortcode generates short codes and checks their shape.
package shortcode

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Alphabet is the set of symbols a short code is drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Length is the fixed length of every short code.
	Length = 6
	// MaxAttempts is the number of random draws before falling back to time-derived codes.
	MaxAttempts = 10
)

// suffixMod keeps the decimal suffix of a fallback code at Length-1 digits.
const suffixMod = 100_000

// ExistsFunc reports whether a short code is already taken in the backing store.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator produces short codes that are unique against a backing store.
// It never persists anything itself.
type Generator struct {
	random func(alphabet string, size int) (string, error)
	now    func() time.Time
}

// New returns a Generator drawing codes with go-nanoid.
func New() *Generator {
	return &Generator{
		random: gonanoid.Generate,
		now:    time.Now,
	}
}

// Generate draws up to MaxAttempts random codes and returns the first one exists reports as free.
// When every draw collides it falls back to a random symbol followed by the low digits of the
// current epoch second and, if that is taken too, of the current nanosecond. The last candidate
// is returned without being checked so the call always terminates.
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	const op = "shortcode.Generator.Generate"

	for i := 0; i < MaxAttempts; i++ {
		code, err := g.random(Alphabet, Length)
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check short code: %w", op, err)
		}
		if !taken {
			return code, nil
		}
	}

	now := g.now()

	code, err := g.timeCode(now.Unix())
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate fallback short code: %w", op, err)
	}

	taken, err := exists(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%s: failed to check short code: %w", op, err)
	}
	if !taken {
		return code, nil
	}

	code, err = g.timeCode(int64(now.Nanosecond()))
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate fallback short code: %w", op, err)
	}

	return code, nil
}

// timeCode builds a Length-long code from one random symbol and the zero-padded low digits of n.
func (g *Generator) timeCode(n int64) (string, error) {
	prefix, err := g.random(Alphabet, 1)
	if err != nil {
		return "", err
	}

	if n < 0 {
		n = -n
	}

	return fmt.Sprintf("%s%0*d", prefix, Length-1, n%suffixMod), nil
}

// IsValid reports whether code has the shape of a generated short code.
func IsValid(code string) bool {
	if len(code) != Length {
		return false
	}

	for _, c := range code {
		if !isAlphanumeric(c) {
			return false
		}
	}

	return true
}

func isAlphanumeric(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
