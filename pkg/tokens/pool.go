// Package tokens provides the credential pool used to spread Canvas API requests
// across several access tokens.
//
// Rotation is blind round-robin: every call to Next returns the credential after the
// previous one, in load order, wrapping indefinitely. A credential that keeps failing
// is still handed out on its next turn; the pool never inspects responses.
package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrNoTokens is returned when a pool would be created without any credential.
var ErrNoTokens = errors.New("no API tokens found")

var tokenRotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "canvas_token_rotations_total",
	Help: "Total number of times a credential was handed out by the token pool",
}, []string{"credential"})

// Pool is an ordered, immutable set of bearer tokens with an atomically advanced
// rotation index. It is safe for concurrent use.
type Pool struct {
	tokens       []string
	fingerprints []string
	next         atomic.Uint64
}

// NewPool creates a pool rotating over tokens in the given order.
func NewPool(tokens []string) (*Pool, error) {
	if len(tokens) == 0 {
		return nil, ErrNoTokens
	}

	p := &Pool{
		tokens:       make([]string, len(tokens)),
		fingerprints: make([]string, len(tokens)),
	}
	copy(p.tokens, tokens)
	for i, t := range p.tokens {
		p.fingerprints[i] = Fingerprint(t)
	}

	return p, nil
}

// Next returns the next credential in round-robin order. It never blocks.
func (p *Pool) Next() string {
	n := p.next.Add(1) - 1
	i := int(n % uint64(len(p.tokens)))
	tokenRotationsTotal.WithLabelValues(p.fingerprints[i]).Inc()
	return p.tokens[i]
}

// Len returns the number of credentials in the pool.
func (p *Pool) Len() int {
	return len(p.tokens)
}

// Fingerprints returns the credential fingerprints in rotation order.
func (p *Pool) Fingerprints() []string {
	out := make([]string, len(p.fingerprints))
	copy(out, p.fingerprints)
	return out
}

// Fingerprint returns a short, non-reversible identifier for a credential.
// Tokens never appear in logs, metrics or Redis keys; fingerprints do.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:12]
}
