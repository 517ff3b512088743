// Package credential owns salted password hashing and verification. It has
// no dependency on the persistence layer so it can be unit-tested without a
// database.
package credential

import (
	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest work factor accepted; anything below is raised to it.
const MinCost = 12

// Store computes and verifies bcrypt digests with a fixed work factor.
type Store struct {
	cost  int
	dummy string
}

// dummyPlain seeds the throwaway digest used to equalize verification cost.
// Its value never matters; no stored credential is derived from it.
const dummyPlain = "no-such-credential"

// NewStore returns a Store with the given bcrypt cost. Costs below MinCost
// are clamped up so a misconfigured deployment never weakens hashing.
func NewStore(cost int) *Store {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	// Cost is clamped into bcrypt's valid range and the input is short, so
	// generation cannot fail here.
	b, _ := bcrypt.GenerateFromPassword([]byte(dummyPlain), cost)
	return &Store{cost: cost, dummy: string(b)}
}

// Hash computes a salted one-way digest of plain. The salt is random per
// call, so hashing the same plaintext twice yields different digests.
func (s *Store) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify recomputes the digest using the salt embedded in digest and
// compares in constant time. A missing or malformed digest fails closed.
func (s *Store) Verify(plain, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// DummyDigest returns a digest of a fixed throwaway value, computed once at
// construction with the store's work factor. Verifying a candidate against it
// runs the full bcrypt compare, so a login attempt for a nonexistent account
// takes as long as a wrong password for a real one.
func (s *Store) DummyDigest() string {
	return s.dummy
}
