package auth

import "golang.org/x/crypto/bcrypt"

// SecretHasher defines behavior for hashing and comparing login secrets.
// The admin view authenticates with a PIN; only its bcrypt hash is deployed.
type SecretHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// BcryptSecretHasher is a SecretHasher implementation using bcrypt.
type BcryptSecretHasher struct {
	cost int
}

// NewBcryptSecretHasher creates a new BcryptSecretHasher with default cost.
func NewBcryptSecretHasher() *BcryptSecretHasher {
	return &BcryptSecretHasher{
		cost: bcrypt.DefaultCost,
	}
}

// Hash hashes the given plain secret using bcrypt.
func (h *BcryptSecretHasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Compare compares a bcrypt hash with its possible plaintext equivalent.
// Returns nil on success, or an error on failure.
func (h *BcryptSecretHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
