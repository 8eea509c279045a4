// Package passhash wraps bcrypt hashing and verification of user passwords.
package passhash

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt cost factor used for all new hashes.
const Cost = 10

// Hash returns the bcrypt hash of the given plaintext password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify compares a stored bcrypt hash with a presented plaintext password.
// It returns bcrypt.ErrMismatchedHashAndPassword on mismatch.
func Verify(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Hasher adapts the package functions to the hashing contract
// expected by the service layer.
type Hasher struct{}

func (Hasher) Hash(password string) (string, error) {
	return Hash(password)
}

func (Hasher) Verify(hash, password string) error {
	return Verify(hash, password)
}
