package aggregate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DigestPrefix marks the digest algorithm in stored metadata.
const DigestPrefix = "sha256:"

// ContentHash canonicalizes a summary payload and returns its digest as
// "sha256:<hex>". encoding/json emits map keys sorted and struct fields in
// declaration order, so the byte form is stable across marshal round-trips
// and the digest can verify an archived payload after download.
func ContentHash(payload *BuildResult) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalizing payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return DigestPrefix + hex.EncodeToString(sum[:]), nil
}
