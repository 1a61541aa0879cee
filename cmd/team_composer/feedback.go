package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/team-composer/internal/ingestion"
	"github.com/jonathan/team-composer/internal/observability"
	"github.com/jonathan/team-composer/internal/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record and list feedback on suggestions",
}

var feedbackRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append feedback for a suggestion",
	Long: "Appends an accept, reject or modify verdict for a retained suggestion to the feedback log. " +
		"The feedback is read from --file or assembled from --type, --rating and --comments.",
	RunE: runFeedbackRecord,
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded feedback",
	RunE:  runFeedbackList,
}

var (
	feedbackSuggestion string
	feedbackFile       string
	feedbackType       string
	feedbackRating     int
	feedbackComments   string
	feedbackBy         string

	feedbackSince  string
	feedbackUntil  string
	feedbackLimit  int
	feedbackOutput string
)

func init() {
	feedbackRecordCmd.Flags().StringVarP(&feedbackSuggestion, "suggestion", "s", "", "Suggestion ID (required)")
	feedbackRecordCmd.Flags().StringVarP(&feedbackFile, "file", "f", "", "Path to feedback JSON/YAML file")
	feedbackRecordCmd.Flags().StringVarP(&feedbackType, "type", "t", "", "Feedback type: accept, reject or modify")
	feedbackRecordCmd.Flags().IntVar(&feedbackRating, "rating", 0, "Rating from 1 to 5 (0 = none)")
	feedbackRecordCmd.Flags().StringVar(&feedbackComments, "comments", "", "Free-text comments")
	feedbackRecordCmd.Flags().StringVar(&feedbackBy, "by", "", "Who submitted the feedback")
	if err := feedbackRecordCmd.MarkFlagRequired("suggestion"); err != nil {
		panic(fmt.Sprintf("failed to mark suggestion flag as required: %v", err))
	}
	feedbackRecordCmd.MarkFlagsMutuallyExclusive("file", "type")
	feedbackRecordCmd.MarkFlagsOneRequired("file", "type")

	feedbackListCmd.Flags().StringVarP(&feedbackSuggestion, "suggestion", "s", "", "Only feedback for this suggestion ID")
	feedbackListCmd.Flags().StringVarP(&feedbackType, "type", "t", "", "Only feedback of this type")
	feedbackListCmd.Flags().StringVar(&feedbackSince, "since", "", "Only feedback recorded at or after this RFC3339 time")
	feedbackListCmd.Flags().StringVar(&feedbackUntil, "until", "", "Only feedback recorded before this RFC3339 time")
	feedbackListCmd.Flags().IntVar(&feedbackLimit, "limit", 0, "Maximum number of records (0 = all)")
	feedbackListCmd.Flags().StringVarP(&feedbackOutput, "out", "o", "", "Path to output JSON file (default stdout)")

	feedbackCmd.AddCommand(feedbackRecordCmd, feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}

// feedbackFromFlags assembles feedback from --file or the individual flags
func feedbackFromFlags() (*types.Feedback, error) {
	if feedbackFile != "" {
		return ingestion.LoadFeedback(feedbackFile)
	}
	fb := &types.Feedback{
		Type:        types.FeedbackType(feedbackType),
		Comments:    feedbackComments,
		SubmittedBy: feedbackBy,
	}
	if feedbackRating != 0 {
		rating := feedbackRating
		fb.Rating = &rating
	}
	if err := fb.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feedback: %w", err)
	}
	return fb, nil
}

// filterFromFlags builds the query filter for feedback list
func filterFromFlags() (types.FeedbackFilter, error) {
	filter := types.FeedbackFilter{
		Type:  types.FeedbackType(feedbackType),
		Limit: feedbackLimit,
	}
	if feedbackSuggestion != "" {
		id, err := uuid.Parse(feedbackSuggestion)
		if err != nil {
			return filter, fmt.Errorf("invalid suggestion id %q: %w", feedbackSuggestion, err)
		}
		filter.SuggestionID = id
	}
	if feedbackSince != "" {
		t, err := time.Parse(time.RFC3339, feedbackSince)
		if err != nil {
			return filter, fmt.Errorf("invalid --since: %w", err)
		}
		filter.Since = t
	}
	if feedbackUntil != "" {
		t, err := time.Parse(time.RFC3339, feedbackUntil)
		if err != nil {
			return filter, fmt.Errorf("invalid --until: %w", err)
		}
		filter.Until = t
	}
	return filter, nil
}

func runFeedbackRecord(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	id, err := uuid.Parse(feedbackSuggestion)
	if err != nil {
		return fmt.Errorf("invalid suggestion id %q: %w", feedbackSuggestion, err)
	}
	fb, err := feedbackFromFlags()
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
		return fmt.Errorf("feedback record needs a storage backend that outlives the process (postgres or redis), got %q", cfg.Storage.Backend)
	}

	svc, err := newService(cfg, b, nil, log)
	if err != nil {
		return err
	}
	rec, err := svc.SubmitFeedback(ctx, id, *fb)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s feedback %s for suggestion %s\n", rec.Feedback.Type, rec.ID, rec.SuggestionID)
	return nil
}

func runFeedbackList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filter, err := filterFromFlags()
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

	svc, err := newService(cfg, b, nil, log)
	if err != nil {
		return err
	}
	records, err := svc.QueryFeedback(ctx, filter)
	if err != nil {
		return err
	}

	if verbose {
		observability.NewPrinter(os.Stderr).PrintFeedback(records)
	}
	if records == nil {
		records = []types.FeedbackRecord{}
	}
	return writeJSON(cmd.OutOrStdout(), feedbackOutput, records)
}
