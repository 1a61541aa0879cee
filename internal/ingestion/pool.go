package ingestion

import (
	"fmt"
	"strings"

	"github.com/jonathan/team-composer/internal/types"
	schemafiles "github.com/jonathan/team-composer/schemas"
)

// poolDocument is the on-disk layout of a candidate pool export
type poolDocument struct {
	Source     string                   `json:"source,omitempty"`
	ExportedAt string                   `json:"exported_at,omitempty"`
	Candidates []types.CandidateProfile `json:"candidates"`
}

// Pool is a normalized candidate pool ready for filtering
type Pool struct {
	Candidates []types.CandidateProfile
	Metadata   *Metadata
}

// LoadPool reads a candidate pool file (JSON or YAML), validates it against the
// candidate pool schema and normalizes every profile.
func LoadPool(path string, thresholds types.SeniorityThresholds) (*Pool, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	pool, err := ParsePool(data, thresholds)
	if err != nil {
		return nil, err
	}
	pool.Metadata.Path = path
	return pool, nil
}

// ParsePool validates and normalizes a JSON candidate pool document
func ParsePool(data []byte, thresholds types.SeniorityThresholds) (*Pool, error) {
	var doc poolDocument
	if err := decodeDocument(schemafiles.CandidatePool, data, &doc); err != nil {
		return nil, fmt.Errorf("invalid candidate pool: %w", err)
	}

	candidates, duplicates, err := NormalizePool(doc.Candidates, thresholds)
	if err != nil {
		return nil, err
	}

	meta := NewMetadata(data, "")
	meta.Source = doc.Source
	meta.ExportedAt = doc.ExportedAt
	meta.CandidateCount = len(candidates)
	meta.Duplicates = duplicates

	return &Pool{Candidates: candidates, Metadata: meta}, nil
}

// NormalizePool cleans a raw candidate list in input order: ids and departments
// are trimmed, skills are lowercased and deduplicated, missing seniority bands
// are derived from experience. Repeated employee ids keep the first record and
// are returned as duplicates. A profile that fails validation fails the pool.
func NormalizePool(raw []types.CandidateProfile, thresholds types.SeniorityThresholds) ([]types.CandidateProfile, []string, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, nil, err
	}

	out := make([]types.CandidateProfile, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	var duplicates []string

	for i := range raw {
		c := normalizeCandidate(raw[i], thresholds)
		if err := c.Validate(); err != nil {
			return nil, nil, fmt.Errorf("candidate %d (%q): %w", i, c.EmployeeID, err)
		}
		if seen[c.EmployeeID] {
			duplicates = append(duplicates, c.EmployeeID)
			continue
		}
		seen[c.EmployeeID] = true
		out = append(out, c)
	}

	return out, duplicates, nil
}

func normalizeCandidate(c types.CandidateProfile, thresholds types.SeniorityThresholds) types.CandidateProfile {
	c.EmployeeID = strings.TrimSpace(c.EmployeeID)
	c.Department = strings.TrimSpace(c.Department)
	c.Email = strings.TrimSpace(c.Email)
	c.Skills = types.NormalizeSkills(c.Skills)

	if len(c.History) > 0 {
		history := make([]types.ProjectRecord, len(c.History))
		for i, h := range c.History {
			h.Skills = types.NormalizeSkills(h.Skills)
			history[i] = h
		}
		c.History = history
	}

	if !c.SeniorityBand.Valid() {
		c.SeniorityBand = thresholds.Band(c.ExperienceYears)
	}
	return c
}
