// Package service provides technical services for authorization operations:
// principal secret generation and hashing, and authentication token handling.
package service

// SecretService defines operations for principal secret generation and validation.
// Implementations must use cryptographically secure random generation and an
// industry-standard password hashing algorithm.
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (shown once to the caller) and the
	// hashed version (stored in the database).
	GenerateSecret() (plainSecret string, hashedSecret string, error error)

	// HashSecret hashes a plain text secret using a secure hashing algorithm.
	HashSecret(plainSecret string) (hashedSecret string, error error)

	// CompareSecret compares a plain text secret against a hashed secret.
	// The comparison is constant-time to prevent timing attacks.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService defines operations for authentication token generation and
// hashing. Tokens are short-lived, so a fast hash (SHA-256) is used for the
// stored lookup value.
type TokenService interface {
	// GenerateToken creates a new cryptographically secure random token.
	// Returns both the plain text token (shown once at issuance) and the
	// hashed version (stored in the database).
	GenerateToken() (plainToken string, tokenHash string, error error)

	// HashToken hashes a plain text token using SHA-256.
	HashToken(plainToken string) string
}
