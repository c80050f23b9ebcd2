package core

import "strings"

// DefaultAdapterPathPrefix is the object path namespace neard exports its
// adapters under (/org/neard/nfc0, /org/neard/nfc1, ...).
const DefaultAdapterPathPrefix = "/org/neard/nfc"

// IsAdapterPath reports whether path names a neard adapter object.
func IsAdapterPath(path string) bool {
	return strings.HasPrefix(path, DefaultAdapterPathPrefix)
}

// AdapterPathFilter returns the adapter predicate for a custom namespace. An
// empty prefix falls back to DefaultAdapterPathPrefix.
func AdapterPathFilter(prefix string) func(string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return IsAdapterPath
	}
	return func(path string) bool {
		return strings.HasPrefix(path, prefix)
	}
}
