package auth

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// ToStringMap flattens a decoded JSON object into a StringMap. A nil input
// stays nil.
func ToStringMap(src map[string]any) StringMap {
	if src == nil {
		return nil
	}
	out := make(StringMap, len(src))
	for k, v := range src {
		out[k] = stringify(v)
	}
	return out
}

func stringify(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		data, _ := json.Marshal(v)
		return string(data)
	}
	return s
}
