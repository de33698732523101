package v1

import "golang.org/x/crypto/bcrypt"

// PasswordHasher abstracts the hashing algorithm so the service depends on
// the contract, not on bcrypt directly.
type PasswordHasher interface {
	// Hash generates a salted digest from a plaintext password.
	Hash(password string) (string, error)

	// Verify reports whether the plaintext matches the digest. Any
	// mismatch or malformed digest yields false, never an error.
	Verify(password, digest string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt with a configurable
// work factor. bcrypt embeds a fresh random salt in each digest and compares
// in constant time.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Costs outside bcrypt's valid range
// are clamped to the default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

var _ PasswordHasher = (*BcryptHasher)(nil)
