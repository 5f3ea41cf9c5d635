package auth

import (
	"context"
	"errors"
	"slices"
)

// ErrIdentityNotFound is returned by a CredentialStore when no identity has the login.
var ErrIdentityNotFound = errors.New("auth: identity not found")

// Identity is an authenticatable principal as seen by the auth core.
type Identity struct {
	// ID is the internal reference id of the account.
	ID uint64 `json:"id"`
	// Login is the unique, email-shaped login name.
	Login string `json:"login"`
	// SecretHash is the stored digest of the secret. Never the plaintext.
	SecretHash string `json:"-"`
	// Enabled is false for administratively blocked accounts.
	Enabled bool `json:"enabled"`
	// Roles are the granted role names, unique and unordered.
	Roles []string `json:"roles"`
}

// HasRole reports whether the identity was granted role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	return slices.Contains(i.Roles, role)
}

// Clone returns a deep copy so request-scoped views cannot alias store data.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Roles = slices.Clone(i.Roles)
	return &c
}

// CredentialStore is the read-only view of identity storage the auth core needs.
type CredentialStore interface {
	// FindByLogin returns the identity for login, or ErrIdentityNotFound.
	FindByLogin(ctx context.Context, login string) (*Identity, error)
	// ExistsByLogin reports whether an identity with login exists.
	ExistsByLogin(ctx context.Context, login string) (bool, error)
}

// SecretHasher hashes and verifies stored secrets.
type SecretHasher interface {
	// Hash returns an opaque digest of plaintext.
	Hash(plaintext string) (string, error)
	// Verify returns nil if plaintext matches digest.
	Verify(plaintext, digest string) error
}
