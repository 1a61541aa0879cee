// Package ingestion turns HR exports and caller documents into the normalized
// values the composer works on: a deduplicated candidate pool, a requirement,
// constraint overrides and feedback.
package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/team-composer/internal/schemas"
	"github.com/jonathan/team-composer/internal/types"
	schemafiles "github.com/jonathan/team-composer/schemas"
	"gopkg.in/yaml.v3"
)

// readDocument reads a JSON or YAML file and returns it as JSON bytes.
// YAML is converted so that every input goes through the same schema check.
func readDocument(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(content)
	default:
		return content, nil
	}
}

func yamlToJSON(content []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	return out, nil
}

// decodeDocument validates data against the named schema and decodes it into v
func decodeDocument(schemaName string, data []byte, v any) error {
	if err := schemas.ValidateDocument(schemaName, data); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// LoadRequirement reads a requirement file (JSON or YAML). Skills are
// normalized; cross-field rules are left to the constraints package.
func LoadRequirement(path string) (*types.Requirement, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return ParseRequirement(data)
}

// ParseRequirement decodes and normalizes a JSON requirement document
func ParseRequirement(data []byte) (*types.Requirement, error) {
	var req types.Requirement
	if err := decodeDocument(schemafiles.Requirement, data, &req); err != nil {
		return nil, fmt.Errorf("invalid requirement: %w", err)
	}
	req.Role = strings.TrimSpace(req.Role)
	req.RequiredSkills = types.NormalizeSkills(req.RequiredSkills)
	for i := range req.SubRoles {
		req.SubRoles[i].RequiredSkills = types.NormalizeSkills(req.SubRoles[i].RequiredSkills)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid requirement: %w", err)
	}
	return &req, nil
}

// LoadOverrides reads a constraint overrides file (JSON or YAML)
func LoadOverrides(path string) (*types.ConstraintOverrides, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	var o types.ConstraintOverrides
	if err := decodeDocument(schemafiles.ConstraintOverrides, data, &o); err != nil {
		return nil, fmt.Errorf("invalid constraint overrides: %w", err)
	}
	return &o, nil
}

// LoadFeedback reads a feedback file (JSON or YAML)
func LoadFeedback(path string) (*types.Feedback, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	var fb types.Feedback
	if err := decodeDocument(schemafiles.Feedback, data, &fb); err != nil {
		return nil, fmt.Errorf("invalid feedback: %w", err)
	}
	if err := fb.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feedback: %w", err)
	}
	return &fb, nil
}
