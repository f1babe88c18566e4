// Package code generates the short share codes that address menus and splits.
package code

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/easysplit/internal/metrics"
)

const (
	Length       = 8
	LegacyLength = 6

	alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxAttempts = 10
)

var ErrExhausted = errors.New("could not generate a unique code")

// TakenFunc reports whether a code is already used by any menu or split.
type TakenFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	rand      io.Reader
	namespace string
}

// New returns a generator backed by crypto/rand. namespace only labels metrics.
func New(namespace string) *Generator {
	return NewWithReader(rand.Reader, namespace)
}

func NewWithReader(r io.Reader, namespace string) *Generator {
	return &Generator{rand: r, namespace: namespace}
}

// Generate returns a random code without checking it against anything.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}

	return string(buf), nil
}

// Unique generates codes until taken reports one as free, giving up with ErrExhausted
// after a bounded number of attempts.
func (g *Generator) Unique(ctx context.Context, taken TakenFunc) (string, error) {
	for range maxAttempts {
		c, err := g.Generate()
		if err != nil {
			return "", err
		}

		used, err := taken(ctx, c)
		if err != nil {
			return "", fmt.Errorf("checking code: %w", err)
		}

		if !used {
			metrics.CodesIssued.WithLabelValues(g.namespace).Inc()
			return c, nil
		}

		metrics.CodeCollisions.Inc()
	}

	return "", ErrExhausted
}

// Normalize makes lookups case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code has an accepted length and only alphabet characters.
// Callers normalize first.
func Valid(code string) bool {
	if len(code) < LegacyLength || len(code) > Length {
		return false
	}

	for _, r := range code {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}

	return true
}
