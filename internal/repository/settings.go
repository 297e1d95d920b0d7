package repository

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// Settings is the open key/value region of a record, stored as a JSON object.
type Settings map[string]any

func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

func (s Settings) String(key string, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Merge returns a copy of s with patch applied. Nil values delete keys.
func (s Settings) Merge(patch Settings) Settings {
	out := s.clone()
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func (s Settings) clone() Settings {
	out := make(Settings, len(s))
	maps.Copy(out, s)
	return out
}

func (s Settings) encode() (string, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return string(b), nil
}

func decodeSettings(raw string) (Settings, error) {
	s := Settings{}
	if raw == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}
