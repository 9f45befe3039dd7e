// Package env reads ad-hoc process environment overrides that live outside
// the structured configuration, such as PORT on managed runtimes.
package env

import "os"

// Get returns the named variable, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
