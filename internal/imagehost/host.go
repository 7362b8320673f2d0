// Package imagehost stores images in a remote git-hosting repository through
// its contents REST API. Swap implementations by changing the concrete type
// injected at startup — the GitHub implementation works with any repository
// the configured personal access token can write to.
package imagehost

import "context"

// Config holds the credentials and target repository for a host.
// The JSON keys match the persisted settings format.
type Config struct {
	PersonalAccessToken string `json:"personal_access_token"`
	UserName            string `json:"user_name"`
	RepositoryName      string `json:"repository_name"`
}

// Host is the interface for storing and removing images at a remote host.
//
// A Host keeps no local copy of anything it uploads; existence and content
// hashes are queried fresh on every operation that needs them. Configuration
// is expected to be set before use and not mutated concurrently with
// operations in flight.
type Host interface {
	// Ready reports whether the configuration is complete. No I/O.
	Ready() bool

	// Config returns the current configuration.
	Config() Config

	// SetConfig replaces the configuration and recomputes derived state.
	// No validation is performed here; use TestConfig for that.
	SetConfig(cfg Config)

	// TestConfig validates a candidate configuration against the live
	// service without mutating stored state. The message carries the raw
	// response body (or error text) for diagnostic display, even when ok.
	TestConfig(ctx context.Context, cfg Config) (ok bool, message string)

	// Create uploads content as a new file at the repository-relative path
	// and returns its public download URL. Creation never overwrites: it
	// fails when the path is already occupied.
	Create(ctx context.Context, content []byte, path string) (string, error)

	// OwnsURL reports whether url was produced by this host under its
	// current configuration. Callers must check it before Remove.
	OwnsURL(url string) bool

	// Remove deletes the previously created file behind url. The caller
	// must ensure OwnsURL(url) holds; passing a foreign URL is a contract
	// violation.
	Remove(ctx context.Context, url string) error
}
