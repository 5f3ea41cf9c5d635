// Package password hashes and verifies account secrets.
//
// Two auth.SecretHasher implementations are provided: BcryptHasher, which
// matches the digests the forum has always stored, and Argon2Hasher for new
// deployments. NewHasher combines them: it writes the configured format and
// verifies either, so switching algorithms keeps existing accounts working.
//
//	hasher := password.NewHasher(cfg.Auth.Password)
//	digest, err := hasher.Hash("s3cret-pass")
//	err = hasher.Verify("s3cret-pass", digest) // nil on match
package password

import "errors"

var (
	// ErrMismatch is returned by Verify when the secret does not match.
	ErrMismatch = errors.New("password: secret does not match")
	// ErrTooLong is returned by BcryptHasher.Hash for secrets over 72 bytes.
	ErrTooLong = errors.New("password: secret exceeds 72 bytes")
	// ErrMalformedHash is returned by Verify for digests it cannot parse.
	ErrMalformedHash = errors.New("password: malformed hash")
)
