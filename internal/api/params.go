package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// queryString returns the first non-empty value among the named query
// parameters, trimmed. Several endpoints kept legacy aliases alive.
func queryString(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// queryInt parses an optional integer parameter. Absent means nil,
// not zero, so services can tell "unset" from "year 0".
func queryInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &n, nil
}

// splitList breaks a comma-separated parameter into trimmed parts.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
