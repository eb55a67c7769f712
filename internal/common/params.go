package common

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryInt reads an integer query parameter, returning fallback when the
// parameter is absent or malformed.
func QueryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
