package cache

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint derives the cache key material for one query: an HMAC-SHA256
// over the canonical serialization of the operation name, the store
// generation, and the query parameters, hex encoded. The HMAC secret keeps
// fingerprints unguessable from the outside; the generation makes every
// fingerprint issued before a mutation unreachable.
func Fingerprint(secret []byte, operation string, generation int64, params any) (string, error) {
	payload, err := canonicalJSON(map[string]any{
		"operation":  operation,
		"generation": generation,
		"params":     params,
	})
	if err != nil {
		return "", fmt.Errorf("canonicalize params: %w", err)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// canonicalJSON serializes v with deterministically ordered object keys, so
// two semantically identical parameter sets always produce the same bytes
// regardless of how they were constructed. Round-tripping through any
// normalizes structs and maps alike: encoding/json sorts map keys.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
