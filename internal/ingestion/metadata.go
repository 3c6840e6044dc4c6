package ingestion

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Metadata describes where a project request came from
type Metadata struct {
	Source        string `json:"source,omitempty"` // File path, or empty for inline requests
	Format        string `json:"format"`           // yaml or json
	Timestamp     string `json:"timestamp"`        // RFC3339 format
	Hash          string `json:"hash"`             // BLAKE2b-256 hex digest of the raw request
	BlueprintSize int    `json:"blueprint_size"`
}

// NewMetadata creates Metadata for raw request bytes with the current timestamp
func NewMetadata(raw []byte, source, format string) *Metadata {
	return &Metadata{
		Source:    source,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(raw),
	}
}

func computeHash(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
