package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/team-composer/internal/ingestion"
	"github.com/jonathan/team-composer/internal/observability"
)

var whatIfCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Re-optimize a retained suggestion under modified constraints",
	Long: "Applies constraint overrides to the constraints of an earlier suggestion and composes an alternative " +
		"from exactly the candidate pool that suggestion was built from. Requires a postgres or redis backend " +
		"so that the earlier snapshot is still available.",
	RunE: runWhatIf,
}

var (
	whatIfBase      string
	whatIfOverrides string
	whatIfOutput    string
	whatIfExplain   string
)

func init() {
	whatIfCmd.Flags().StringVarP(&whatIfBase, "base", "b", "", "Suggestion ID to start from (required)")
	whatIfCmd.Flags().StringVarP(&whatIfOverrides, "overrides", "m", "", "Path to constraint overrides JSON/YAML file (required)")
	whatIfCmd.Flags().StringVarP(&whatIfOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	whatIfCmd.Flags().StringVar(&whatIfExplain, "explain", "none", "Member explanations: none, rule or llm")

	if err := whatIfCmd.MarkFlagRequired("base"); err != nil {
		panic(fmt.Sprintf("failed to mark base flag as required: %v", err))
	}
	if err := whatIfCmd.MarkFlagRequired("overrides"); err != nil {
		panic(fmt.Sprintf("failed to mark overrides flag as required: %v", err))
	}

	rootCmd.AddCommand(whatIfCmd)
}

func runWhatIf(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	baseID, err := uuid.Parse(whatIfBase)
	if err != nil {
		return fmt.Errorf("invalid suggestion id %q: %w", whatIfBase, err)
	}
	overrides, err := ingestion.LoadOverrides(whatIfOverrides)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()
	if !b.durable {
		return fmt.Errorf("whatif needs a storage backend that outlives the process (postgres or redis), got %q", cfg.Storage.Backend)
	}

	explainer, closeExplainer, err := newExplainer(ctx, whatIfExplain, cfg)
	if err != nil {
		return err
	}
	defer closeExplainer()

	svc, err := newService(cfg, b, explainer, log)
	if err != nil {
		return err
	}

	res, err := svc.WhatIf(ctx, baseID, overrides)
	if err != nil {
		return err
	}

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintRequirement(res.Requirement, res.Constraints)
		printer.PrintFeasibility(&res.Feasibility)
		printer.PrintSuggestion(res.Suggestion)
		printer.PrintExplanations(res.Explanations)
	}

	return writeJSON(cmd.OutOrStdout(), whatIfOutput, toOutput(res))
}
