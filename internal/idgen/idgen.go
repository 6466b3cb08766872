// Package idgen generates and validates record identifiers.
package idgen

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Generator generates unique identifiers.
// Implementations should be safe for concurrent use.
type Generator interface {
	Generate() (uuid.UUID, error)
}

// Version selects a UUID variant.
type Version uint8

const (
	V4 Version = 4
	V7 Version = 7
)

// canonicalLen is the length of the hyphenated 8-4-4-4-12 text form.
const canonicalLen = 36

// ErrMalformed is returned by Parse for anything that is not a canonical UUID.
var ErrMalformed = errors.New("malformed uuid")

/***************
 * UUID v4
 ***************/

type v4Gen struct{}

// NewV4 returns a Generator that produces random UUID v4 values.
func NewV4() Generator { return v4Gen{} }

func (v4Gen) Generate() (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("uuid v4 generation failed: %w", err)
	}
	return id, nil
}

/***************
 * UUID v7
 ***************/

type v7Gen struct {
	maxRetries int
}

type V7Option func(*v7Gen)

// WithRetries sets how many times to retry uuid.NewV7() after the initial attempt.
// Defaults to 1. Set to 0 to disable retries.
func WithRetries(n int) V7Option {
	return func(g *v7Gen) {
		if n >= 0 {
			g.maxRetries = n
		}
	}
}

// NewV7 returns a Generator that produces time-ordered UUID v7 values.
func NewV7(opts ...V7Option) Generator {
	g := &v7Gen{maxRetries: 1}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *v7Gen) Generate() (uuid.UUID, error) {
	var last error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		id, err := uuid.NewV7()
		if err == nil {
			return id, nil
		}
		last = err
	}
	return uuid.Nil, fmt.Errorf("uuid v7 generation failed after %d attempts: %w", g.maxRetries+1, last)
}

// New returns a Generator for the requested UUID version.
func New(v Version, v7opts ...V7Option) Generator {
	switch v {
	case V7:
		return NewV7(v7opts...)
	default:
		return NewV4()
	}
}

// Parse accepts only the canonical hyphenated form of an RFC 4122 UUID
// (versions 1 through 8) or the nil UUID. Braced, URN and unhyphenated
// forms that uuid.Parse tolerates are rejected.
func Parse(s string) (uuid.UUID, error) {
	if len(s) != canonicalLen {
		return uuid.Nil, ErrMalformed
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if id == uuid.Nil {
		return id, nil
	}
	if id.Variant() != uuid.RFC4122 {
		return uuid.Nil, ErrMalformed
	}
	if v := id.Version(); v < 1 || v > 8 {
		return uuid.Nil, ErrMalformed
	}
	return id, nil
}
