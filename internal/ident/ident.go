// Package ident generates short ticket identifiers: 8 uppercase
// alphanumeric characters drawn from a 128-bit random source.
//
// Generated ids are statistically unique only (36^8 ≈ 2.8e12 values).
// Callers that need guaranteed uniqueness must verify a fresh id against
// the store before accepting it; LedgerService does exactly that.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const (
	// Length of a generated identifier.
	Length = 8

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generator produces ticket ids from an injected random source, so tests
// can seed it deterministically.
type Generator struct {
	src io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return NewFromReader(rand.Reader)
}

// NewFromReader returns a Generator reading randomness from src.
func NewFromReader(src io.Reader) *Generator {
	return &Generator{src: src}
}

// NewID draws 128 bits from the random source and encodes them as 8
// characters over [A-Z0-9]. Each output character consumes 16 bits, so the
// modulo bias is 4/65536 per character — negligible for this id space.
func (g *Generator) NewID() (string, error) {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return "", fmt.Errorf("ident.NewID: %w", err)
	}

	raw := [16]byte(u)
	out := make([]byte, Length)
	for i := 0; i < Length; i++ {
		v := binary.BigEndian.Uint16(raw[2*i : 2*i+2])
		out[i] = alphabet[v%uint16(len(alphabet))]
	}
	return string(out), nil
}
