package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/team-composer/internal/schemas"
	schemafiles "github.com/jonathan/team-composer/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an input file against its JSON Schema",
	Long: "Validates a candidate pool, requirement, constraint overrides or feedback file against the bundled " +
		"schema for its --kind, or against an arbitrary schema given with --schema.",
	RunE: runValidate,
}

var (
	validateKind   string
	validateSchema string
	validateJSON   string
)

// schemaForKind maps --kind values onto bundled schema files
var schemaForKind = map[string]string{
	"pool":        schemafiles.CandidatePool,
	"requirement": schemafiles.Requirement,
	"overrides":   schemafiles.ConstraintOverrides,
	"feedback":    schemafiles.Feedback,
}

func init() {
	validateCmd.Flags().StringVarP(&validateKind, "kind", "k", "", "Document kind: pool, requirement, overrides or feedback")
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Path to a JSON Schema file")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "Path to the JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}
	validateCmd.MarkFlagsMutuallyExclusive("kind", "schema")
	validateCmd.MarkFlagsOneRequired("kind", "schema")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var err error
	if validateSchema != "" {
		err = schemas.ValidateJSON(validateSchema, validateJSON)
	} else {
		name, ok := schemaForKind[validateKind]
		if !ok {
			return fmt.Errorf("unknown kind %q (use pool, requirement, overrides or feedback)", validateKind)
		}
		err = schemas.ValidateFile(name, validateJSON)
	}

	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation failed for %s\n", validateJSON)
		for _, fe := range validationErr.Errors {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("%s is not valid", validateJSON)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s\n", validateJSON)
	return nil
}
