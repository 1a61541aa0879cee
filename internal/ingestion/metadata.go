package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes one ingested candidate pool file
type Metadata struct {
	Path           string   `json:"path,omitempty"`
	Source         string   `json:"source,omitempty"`      // HR system named in the export
	ExportedAt     string   `json:"exported_at,omitempty"` // as given by the export
	Timestamp      string   `json:"timestamp"`             // RFC3339, when the file was read
	Hash           string   `json:"hash"`                  // SHA256 hex digest of the raw file
	CandidateCount int      `json:"candidate_count"`
	Duplicates     []string `json:"duplicates,omitempty"` // employee ids dropped as repeats
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content []byte, path string) *Metadata {
	return &Metadata{
		Path:      path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
