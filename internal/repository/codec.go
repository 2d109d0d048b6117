package repository

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeBullets is the only bullet encoding written by any backend: a JSON
// array of strings. A nil slice encodes as an empty array.
func EncodeBullets(bullets []string) (string, error) {
	if bullets == nil {
		bullets = []string{}
	}
	raw, err := json.Marshal(bullets)
	if err != nil {
		return "", fmt.Errorf("encode bullets: %w", err)
	}
	return string(raw), nil
}

// DecodeBullets reverses EncodeBullets. Rows written by older deployments
// stored the array double-encoded as a JSON string; those decode too.
func DecodeBullets(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []string{}, nil
	}

	var bullets []string
	if err := json.Unmarshal([]byte(raw), &bullets); err == nil {
		if bullets == nil {
			bullets = []string{}
		}
		return bullets, nil
	}

	var inner string
	if err := json.Unmarshal([]byte(raw), &inner); err != nil {
		return nil, fmt.Errorf("decode bullets: %w", err)
	}
	return DecodeBullets(inner)
}
