package config

import "strings"

// ParseHeaders decodes a "key=value, key2=value2" string into a header map.
// Each pair is split on its first '=' and both halves must be non-empty after
// trimming. A blank input yields an empty map.
func ParseHeaders(encoded string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(encoded) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(encoded, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, &MalformedHeadersError{Input: encoded, Pair: strings.TrimSpace(pair)}
		}
		out[key] = value
	}
	return out, nil
}

// EncodeHeaders is the inverse of ParseHeaders. Keys are emitted in no
// particular order.
func EncodeHeaders(headers map[string]string) string {
	pairs := make([]string, 0, len(headers))
	for k, v := range headers {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ", ")
}
