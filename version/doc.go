// Package version carries forohub's build information.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/forohub/version.Version=1.2.0" ./cmd/forohub
//
// Missing values are filled from the module's embedded VCS build settings.
package version
