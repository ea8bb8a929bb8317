package config

import "strings"

// ResolveDir applies the CLI override over the default drop-in directory.
func ResolveDir(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultConfDir
}
