// Package whatif re-runs filtering and optimization for a retained suggestion
// under modified constraints.
package whatif

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/constraints"
	"github.com/jonathan/team-composer/internal/feasibility"
	"github.com/jonathan/team-composer/internal/logger"
	"github.com/jonathan/team-composer/internal/selection"
	"github.com/jonathan/team-composer/internal/snapshots"
	"github.com/jonathan/team-composer/internal/types"
)

// Outcome is an alternative suggestion together with the filter result it was composed from
type Outcome struct {
	Suggestion  *types.TeamSuggestion
	Feasibility feasibility.Result
	Constraints types.ConstraintSet
}

// Engine re-optimizes suggestions against their retained pool snapshots
type Engine struct {
	snapshots snapshots.Store
	optimizer *selection.Optimizer
	log       *logger.Logger
}

// NewEngine creates an Engine
func NewEngine(store snapshots.Store, optimizer *selection.Optimizer, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{snapshots: store, optimizer: optimizer, log: log}
}

// Reoptimize composes an alternative to the suggestion baseID using exactly the
// candidate pool that suggestion was built from, filtered with modified. The
// seniority mix of modified becomes the optimizer's mix target. The
// alternative gets a new suggestion id, records baseID as its base and is
// itself retained, so what-ifs can be chained.
//
// Errors wrap types.ErrConstraintConflict when modified is contradictory and
// types.ErrUnknownSuggestion when baseID has no retained snapshot.
func (e *Engine) Reoptimize(ctx context.Context, baseID uuid.UUID, modified types.ConstraintSet) (*Outcome, error) {
	if err := constraints.Validate(modified); err != nil {
		return nil, err
	}

	snap, err := e.snapshots.Get(ctx, baseID)
	if err != nil {
		return nil, err
	}

	req := snap.Requirement.Clone()
	if err := constraints.ValidateFor(modified, req); err != nil {
		return nil, err
	}
	req.SeniorityMix = modified.Clone().RequiredSeniorityMix

	result := feasibility.Evaluate(snap.Pool, modified)
	suggestion, err := e.optimizer.Compose(result.Admitted, req)
	if err != nil {
		return nil, fmt.Errorf("what-if for %s: %w", baseID, err)
	}
	base := baseID
	suggestion.BaseSuggestionID = &base

	next := &types.PoolSnapshot{
		SuggestionID: suggestion.SuggestionID,
		Requirement:  *req,
		Constraints:  modified.Clone(),
		Pool:         snap.Pool,
		MemberIDs:    suggestion.MemberIDs(),
		CreatedAt:    suggestion.CreatedAt,
	}
	if err := e.snapshots.Put(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to retain what-if snapshot: %w", err)
	}

	e.log.Info("what-if composed",
		"base_suggestion_id", baseID.String(),
		"suggestion_id", suggestion.SuggestionID.String(),
		"admitted", len(result.Admitted),
		"rejected", len(result.Rejected),
		"members", len(suggestion.Members),
		"objective", suggestion.Objective,
	)

	return &Outcome{Suggestion: suggestion, Feasibility: result, Constraints: modified.Clone()}, nil
}

// Retain stores the snapshot for a freshly composed suggestion so that it can
// later be the base of a what-if.
func Retain(ctx context.Context, store snapshots.Store, req *types.Requirement, cs types.ConstraintSet,
	pool []types.CandidateProfile, suggestion *types.TeamSuggestion) error {
	createdAt := suggestion.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	snap := &types.PoolSnapshot{
		SuggestionID: suggestion.SuggestionID,
		Requirement:  *req.Clone(),
		Constraints:  cs.Clone(),
		Pool:         append([]types.CandidateProfile(nil), pool...),
		MemberIDs:    suggestion.MemberIDs(),
		CreatedAt:    createdAt,
	}
	if err := store.Put(ctx, snap); err != nil {
		return fmt.Errorf("failed to retain snapshot for %s: %w", suggestion.SuggestionID, err)
	}
	return nil
}
