package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/team-composer/internal/ingestion"
	"github.com/jonathan/team-composer/internal/observability"
	"github.com/jonathan/team-composer/internal/pipeline"
	"github.com/jonathan/team-composer/internal/ranking"
	"github.com/jonathan/team-composer/internal/types"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Compose a team for one or more requirements",
	Long: "Loads a candidate pool and one or more requirements, filters the pool against each requirement's " +
		"hard constraints and composes a team. Several requirements are composed concurrently against the same pool. " +
		"The output JSON carries the suggestion_id used by the whatif and feedback commands.",
	RunE: runSuggest,
}

var (
	suggestPool         string
	suggestRequirements []string
	suggestOutput       string
	suggestPrefilter    int
	suggestExplain      string
	suggestWhatIf       string
	suggestBrief        string
)

func init() {
	suggestCmd.Flags().StringVarP(&suggestPool, "pool", "p", "", "Path to candidate pool JSON/YAML file (required)")
	suggestCmd.Flags().StringSliceVarP(&suggestRequirements, "requirement", "r", nil, "Path to requirement JSON/YAML file (required, repeatable)")
	suggestCmd.Flags().StringVarP(&suggestOutput, "out", "o", "", "Path to output JSON file (default stdout; a directory when several requirements are given)")
	suggestCmd.Flags().IntVar(&suggestPrefilter, "prefilter", 0, "Narrow the pool to the N best keyword matches before filtering (0 = off)")
	suggestCmd.Flags().StringVar(&suggestExplain, "explain", "none", "Member explanations: none, rule or llm")
	suggestCmd.Flags().StringVar(&suggestWhatIf, "what-if", "", "Path to constraint overrides; composes an alternative in the same run")
	suggestCmd.Flags().StringVar(&suggestBrief, "brief", "", "Path to write the project brief for the suggested team")

	if err := suggestCmd.MarkFlagRequired("pool"); err != nil {
		panic(fmt.Sprintf("failed to mark pool flag as required: %v", err))
	}
	if err := suggestCmd.MarkFlagRequired("requirement"); err != nil {
		panic(fmt.Sprintf("failed to mark requirement flag as required: %v", err))
	}

	rootCmd.AddCommand(suggestCmd)
}

// suggestionOutput is the JSON written for one composed team
type suggestionOutput struct {
	Suggestion   *types.TeamSuggestion `json:"suggestion"`
	Constraints  types.ConstraintSet   `json:"constraints"`
	Rejected     any                   `json:"rejected,omitempty"`
	Explanations any                   `json:"explanations,omitempty"`
	Summary      string                `json:"summary,omitempty"`
	Alternative  *suggestionOutput     `json:"alternative,omitempty"`
}

func toOutput(res *pipeline.Result) *suggestionOutput {
	out := &suggestionOutput{
		Suggestion:  res.Suggestion,
		Constraints: res.Constraints,
		Summary:     res.Summary,
	}
	if len(res.Feasibility.Rejected) > 0 {
		out.Rejected = res.Feasibility.Rejected
	}
	if len(res.Explanations) > 0 {
		out.Explanations = res.Explanations
	}
	return out
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
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

	// 1. Load inputs
	pool, err := ingestion.LoadPool(suggestPool, cfg.Seniority)
	if err != nil {
		return fmt.Errorf("failed to load candidate pool: %w", err)
	}
	if len(pool.Metadata.Duplicates) > 0 {
		log.Warn("duplicate employee ids dropped", "ids", strings.Join(pool.Metadata.Duplicates, ","))
	}

	reqs := make([]*types.Requirement, 0, len(suggestRequirements))
	for _, path := range suggestRequirements {
		req, err := ingestion.LoadRequirement(path)
		if err != nil {
			return fmt.Errorf("failed to load requirement %s: %w", path, err)
		}
		reqs = append(reqs, req)
	}

	var overrides *types.ConstraintOverrides
	if suggestWhatIf != "" {
		if len(reqs) > 1 {
			return fmt.Errorf("--what-if supports a single requirement")
		}
		if overrides, err = ingestion.LoadOverrides(suggestWhatIf); err != nil {
			return err
		}
	}

	// 2. Wire the pipeline
	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	explainer, closeExplainer, err := newExplainer(ctx, suggestExplain, cfg)
	if err != nil {
		return err
	}
	defer closeExplainer()

	svc, err := newService(cfg, b, explainer, log)
	if err != nil {
		return err
	}

	candidates := pool.Candidates
	if suggestPrefilter > 0 {
		if len(reqs) > 1 {
			return fmt.Errorf("--prefilter supports a single requirement")
		}
		candidates, err = ingestion.Narrow(ctx, ingestion.NewKeywordSearcher(candidates), reqs[0], candidates, suggestPrefilter)
		if err != nil {
			return fmt.Errorf("prefilter failed: %w", err)
		}
		log.Info("pool narrowed", "from", len(pool.Candidates), "to", len(candidates))
	}

	// 3. Compose
	if len(reqs) > 1 {
		return runSuggestBatch(ctx, cmd.OutOrStdout(), svc, reqs, candidates)
	}

	res, err := svc.Suggest(ctx, reqs[0], candidates)
	if err != nil {
		return err
	}
	out := toOutput(res)

	if verbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintRequirement(res.Requirement, res.Constraints)
		printer.PrintFeasibility(&res.Feasibility)
		printer.PrintRankedCandidates(ranking.RankCandidates(res.Feasibility.Admitted, res.Requirement, cfg.Scorer()))
		printer.PrintSuggestion(res.Suggestion)
		printer.PrintExplanations(res.Explanations)
	}

	if overrides != nil {
		alt, err := svc.WhatIf(ctx, res.Suggestion.SuggestionID, overrides)
		if err != nil {
			return fmt.Errorf("what-if failed: %w", err)
		}
		out.Alternative = toOutput(alt)
		if verbose {
			observability.NewPrinter(os.Stderr).PrintSuggestion(alt.Suggestion)
		}
	}

	if suggestBrief != "" {
		brief := pipeline.BuildProjectBrief(res.Suggestion, res.Requirement, time.Now())
		if err := writeJSON(cmd.OutOrStdout(), suggestBrief, brief); err != nil {
			return err
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), suggestOutput, out); err != nil {
		return err
	}
	if !b.durable {
		log.Debug("snapshots are in memory; what-if and feedback by id need a postgres or redis backend")
	}
	return nil
}

func runSuggestBatch(ctx context.Context, w io.Writer, svc *pipeline.Service, reqs []*types.Requirement, pool []types.CandidateProfile) error {
	results, err := svc.SuggestBatch(ctx, reqs, pool)
	if err != nil {
		return err
	}

	var failed []string
	outputs := make([]*suggestionOutput, len(results))
	for i, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", suggestRequirements[i], r.Err))
			continue
		}
		outputs[i] = toOutput(r.Result)
		if verbose {
			observability.NewPrinter(os.Stderr).PrintSuggestion(r.Result.Suggestion)
		}
	}

	if suggestOutput == "" {
		if err := writeJSON(w, "", outputs); err != nil {
			return err
		}
	} else {
		for i, out := range outputs {
			if out == nil {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(suggestRequirements[i]), filepath.Ext(suggestRequirements[i]))
			if err := writeJSON(w, filepath.Join(suggestOutput, name+".suggestion.json"), out); err != nil {
				return err
			}
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d requirements rejected:\n  %s", len(failed), len(reqs), strings.Join(failed, "\n  "))
	}
	return nil
}
