package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex-encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Struct fields encode in
// declaration order, so equal values hash equally across runs.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// hashKey builds "prefix:hash(parts)". Parts that cannot be encoded hash
// as an empty list.
func hashKey(prefix string, parts ...any) string {
	h, err := HashJSON(parts)
	if err != nil {
		h = Hash(nil)
	}
	return prefix + ":" + h
}
