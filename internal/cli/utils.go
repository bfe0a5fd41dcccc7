package cli

import (
	"regexp"
	"strings"
)

var (
	// validModelName allows alphanumeric, dots, colons, hyphens, underscores
	validModelName = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

	unsafeProfileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	repeatedHyphens    = regexp.MustCompile(`-+`)
)

// sanitizeProfileName creates a safe profile name from user input
func sanitizeProfileName(input string) string {
	safe := unsafeProfileChars.ReplaceAllString(input, "-")
	safe = repeatedHyphens.ReplaceAllString(safe, "-")
	return strings.Trim(safe, "-")
}

// splitList parses a comma-separated flag value, dropping empty items
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// serverURL turns a listen address into a base URL for local requests
func serverURL(listen string) string {
	if strings.HasPrefix(listen, "http://") || strings.HasPrefix(listen, "https://") {
		return strings.TrimRight(listen, "/")
	}
	if strings.HasPrefix(listen, ":") {
		listen = "localhost" + listen
	}
	return "http://" + listen
}
