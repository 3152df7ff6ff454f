package cache

import "strings"

var credentialMarkers = []string{"password", "passwd", "secret", "credential"}

// IsCredentialKey reports whether a record key looks like it holds a secret.
func IsCredentialKey(key string) bool {
	k := strings.ToLower(key)
	for _, m := range credentialMarkers {
		if strings.Contains(k, m) {
			return true
		}
	}
	return false
}

// Redact strips credential-like keys from every record, including nested
// objects. The input is modified in place and returned.
func Redact(snap Snapshot) Snapshot {
	for _, rec := range snap {
		redactMap(rec)
	}
	return snap
}

func redactMap(m map[string]any) {
	for k, v := range m {
		if IsCredentialKey(k) {
			delete(m, k)
			continue
		}
		redactValue(v)
	}
}

func redactValue(v any) {
	switch t := v.(type) {
	case map[string]any:
		redactMap(t)
	case Record:
		redactMap(t)
	case []any:
		for _, item := range t {
			redactValue(item)
		}
	}
}
