// Package api is forohub's HTTP surface: login, account registration and
// administration, and the caller's own identity.
//
// Register installs the authentication and authorization gates on a Gin
// engine and mounts the handlers. Access is decided by Policy, an ordered
// route table that fails closed for anything it does not list.
package api
