package scraper

import (
	"strconv"
	"strings"
)

// getValueFromKey walks data along keys. String keys index objects, integer
// keys index arrays. Missing entries are not an error for a station payload,
// so the walk just reports whether it got to the end.
func getValueFromKey(data interface{}, keys ...interface{}) (interface{}, bool) {
	var value interface{} = data
	for _, key := range keys {
		switch key := key.(type) {
		case string:
			m, ok := value.(map[string]interface{})
			if !ok {
				return nil, false
			}
			value, ok = m[key]
			if !ok {
				return nil, false
			}
		case int:
			a, ok := value.([]interface{})
			if !ok || key < 0 || key >= len(a) {
				return nil, false
			}
			value = a[key]
		default:
			return nil, false
		}
	}
	return value, value != nil
}

// getStringFromKey is getValueFromKey for leaves. Numbers are formatted, blank
// strings count as missing.
func getStringFromKey(data interface{}, keys ...interface{}) (string, bool) {
	value, ok := getValueFromKey(data, keys...)
	if !ok {
		return "", false
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "", false
	}

	s = strings.TrimSpace(s)
	return s, s != ""
}
