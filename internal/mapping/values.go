package mapping

import (
	"encoding/json"
	"strconv"

	"gorm.io/datatypes"
)

// Text renders a resolved value as a column string.
// Lookup objects render as their display name when they carry one.
func Text(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case map[string]any:
		if name, ok := value["name"].(string); ok {
			return name
		}
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// StringPtr converts a resolved value to a nullable column; empty renders as NULL
func StringPtr(v any) *string {
	text := Text(v)
	if text == "" {
		return nil
	}
	return &text
}

// JSONList converts a resolved value to a JSON array column.
// Non-array values become an empty list.
func JSONList(v any) datatypes.JSON {
	list, ok := v.([]any)
	if !ok {
		if strs, isStrings := v.([]string); isStrings {
			list = make([]any, 0, len(strs))
			for _, s := range strs {
				list = append(list, s)
			}
		} else {
			list = []any{}
		}
	}

	encoded, err := json.Marshal(list)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(encoded)
}
