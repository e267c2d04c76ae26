// Package hash wraps bcrypt for one-way hashing of passwords and
// verification codes.
package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes secrets with a fixed cost.
type Bcrypt struct {
	cost int
}

// New returns a Bcrypt hasher. Costs outside bcrypt's accepted range fall
// back to bcrypt.DefaultCost.
func New(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(h), nil
}

// Verify reports whether plain matches digest. Comparison is constant-time.
func (b *Bcrypt) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
