// Package users owns forum account persistence.
//
// Repository maps the usuarios and perfiles tables onto auth.Identity and
// is the CredentialStore the login verifier and the request authenticator
// read from. Service implements registration, detail lookup and the
// administrative block and unblock operations.
package users
