// Package schemas holds the JSON Schema documents for every input file the CLI accepts.
package schemas

import "embed"

// Schema file names
const (
	CandidatePool       = "candidate_pool.schema.json"
	Requirement         = "requirement.schema.json"
	ConstraintOverrides = "constraint_overrides.schema.json"
	Feedback            = "feedback.schema.json"
)

// All lists every schema shipped with the module
var All = []string{CandidatePool, Requirement, ConstraintOverrides, Feedback}

//go:embed *.schema.json
var files embed.FS

// Read returns the raw schema document with the given file name
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}
