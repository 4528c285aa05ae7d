package mapping

import (
	"strconv"
	"strings"

	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// LookupPath walks a dotted path into a raw record.
// A missing key, a null intermediate or a non-container segment yields (nil, false).
// Numeric segments index into arrays.
func LookupPath(raw map[string]any, path string) (any, bool) {
	if raw == nil || strings.TrimSpace(path) == "" {
		return nil, false
	}

	var current any = raw
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case zoho.Record:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = value
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, false
			}
			current = node[index]
		default:
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}

// lookup is LookupPath without the presence flag
func lookup(raw map[string]any, path string) any {
	value, _ := LookupPath(raw, path)
	return value
}

// truthy mirrors the "first non-empty wins" rule of the default chains
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case bool:
		return value
	case float64:
		return value != 0
	default:
		return true
	}
}

// first returns the first truthy value among the given paths, or nil
func first(raw map[string]any, paths ...string) any {
	for _, path := range paths {
		if value := lookup(raw, path); truthy(value) {
			return value
		}
	}
	return nil
}

// firstOr is first with a literal fallback
func firstOr(raw map[string]any, fallback any, paths ...string) any {
	if value := first(raw, paths...); value != nil {
		return value
	}
	return fallback
}

// joinAddress joins the non-empty parts with ", ", or returns nil when every part is empty
func joinAddress(parts ...any) any {
	var kept []string
	for _, part := range parts {
		if !truthy(part) {
			continue
		}
		kept = append(kept, Text(part))
	}
	if len(kept) == 0 {
		return nil
	}
	return strings.Join(kept, ", ")
}
