package ingestion

import (
	"context"
	"sort"
	"strings"

	"github.com/jonathan/team-composer/internal/scoring"
	"github.com/jonathan/team-composer/internal/types"
)

// Query is what a candidate search is asked to match
type Query struct {
	Role   string
	Skills []string
}

// QueryFor builds the search query for a requirement, including sub-role skills
func QueryFor(req *types.Requirement) Query {
	skills := append([]string(nil), req.RequiredSkills...)
	for _, slot := range req.SubRoles {
		skills = append(skills, slot.RequiredSkills...)
	}
	return Query{Role: req.Role, Skills: types.NormalizeSkills(skills)}
}

// Predicate decides whether a candidate may appear in search results. A nil
// predicate admits everyone.
type Predicate func(c *types.CandidateProfile) bool

// Searcher finds candidates for a query. Implementations may be backed by a
// vector index or an external search service; the composer only sees the
// ranked ids.
type Searcher interface {
	Search(ctx context.Context, q Query, filter Predicate, limit int) ([]string, error)
}

// KeywordSearcher ranks an in-memory pool by skill overlap with the query.
// Ties go to candidates whose current role or project history mentions the
// queried role, then to input order.
type KeywordSearcher struct {
	pool []types.CandidateProfile
}

// NewKeywordSearcher indexes the given pool
func NewKeywordSearcher(pool []types.CandidateProfile) *KeywordSearcher {
	return &KeywordSearcher{pool: pool}
}

type keywordHit struct {
	id        string
	index     int
	overlap   float64
	roleMatch bool
}

// Search returns up to limit employee ids, best first. limit <= 0 returns all matches.
func (s *KeywordSearcher) Search(ctx context.Context, q Query, filter Predicate, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	role := strings.ToLower(strings.TrimSpace(q.Role))
	hits := make([]keywordHit, 0, len(s.pool))
	for i := range s.pool {
		c := &s.pool[i]
		if filter != nil && !filter(c) {
			continue
		}
		overlap, _ := scoring.SkillOverlap(c, q.Skills)
		hits = append(hits, keywordHit{
			id:        c.EmployeeID,
			index:     i,
			overlap:   overlap,
			roleMatch: role != "" && mentionsRole(c, role),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].overlap != hits[j].overlap {
			return hits[i].overlap > hits[j].overlap
		}
		if hits[i].roleMatch != hits[j].roleMatch {
			return hits[i].roleMatch
		}
		return hits[i].index < hits[j].index
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids, nil
}

func mentionsRole(c *types.CandidateProfile, role string) bool {
	if strings.Contains(strings.ToLower(c.CurrentRole), role) {
		return true
	}
	for _, h := range c.History {
		if strings.Contains(strings.ToLower(h.Role), role) {
			return true
		}
	}
	return false
}

// Narrow asks the searcher for the best limit candidates for req and returns
// them from pool in the searcher's order. Ids the searcher returns that are not
// in pool are ignored. limit <= 0 returns pool unchanged.
func Narrow(ctx context.Context, s Searcher, req *types.Requirement, pool []types.CandidateProfile, limit int) ([]types.CandidateProfile, error) {
	if limit <= 0 {
		return pool, nil
	}

	ids, err := s.Search(ctx, QueryFor(req), nil, limit)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(pool))
	for i := range pool {
		if _, ok := byID[pool[i].EmployeeID]; !ok {
			byID[pool[i].EmployeeID] = i
		}
	}

	out := make([]types.CandidateProfile, 0, len(ids))
	used := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || used[id] {
			continue
		}
		used[id] = true
		out = append(out, pool[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
