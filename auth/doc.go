// Package auth holds the identity model and login verification for forohub.
//
// Subpackages:
//
//   - auth/jwt: signed, time-limited bearer tokens (TokenCodec)
//   - auth/password: adaptive secret hashing (bcrypt, argon2id)
//   - auth/authctx: request-scoped identity carried in context.Context
//
// The package depends on persistence only through CredentialStore and on
// hashing only through SecretHasher, so the users repository and the
// password package plug in without auth knowing about either.
//
//	verifier := auth.NewVerifier(repo, password.NewBcryptHasher(), log)
//	identity, err := verifier.Authenticate(ctx, "a@x.com", "s3cret")
//	if errors.Is(err, auth.ErrInvalidCredentials) { ... }
package auth
