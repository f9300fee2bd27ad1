package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost factor, tuned to roughly 300ms per hash
const DefaultHashCost = 12

// ErrPepperRequired is returned when hashing is attempted without a configured pepper
var ErrPepperRequired = errors.New("a pepper must be configured for password hashing")

// Hasher derives and verifies slow salted hashes. A process-wide pepper is
// appended to every input before hashing, so hashes are only verifiable by a
// process holding the same secret. Used for passwords and game join secrets.
type Hasher struct {
	pepper string
	cost   int
}

// NewHasher creates a Hasher with the default cost
func NewHasher(pepper string) *Hasher {
	return NewHasherWithCost(pepper, DefaultHashCost)
}

// NewHasherWithCost creates a Hasher with an explicit bcrypt cost (for tests)
func NewHasherWithCost(pepper string, cost int) *Hasher {
	return &Hasher{pepper: pepper, cost: cost}
}

// Hash derives a salted, peppered hash of plain
func (h *Hasher) Hash(plain string) (string, error) {
	if h.pepper == "" {
		return "", ErrPepperRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain+h.pepper), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches the given hash. The comparison is
// constant time (delegated to bcrypt).
func (h *Hasher) Verify(plain, hash string) bool {
	if h.pepper == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain+h.pepper)) == nil
}
