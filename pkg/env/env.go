// Package env holds the one ambient lookup the rest of the codebase is
// allowed: everything else reads configuration through pkg/config.
package env

import "os"

// Get reads key from the process environment, returning fallback when the
// variable is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
