package feasibility

import (
	"testing"

	"github.com/jonathan/team-composer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConstraints() types.ConstraintSet {
	return types.ConstraintSet{
		MinExperienceYears: 2,
		MaxExperienceYears: 8,
		MaxWorkload:        0.8,
	}
}

func ids(pool []types.CandidateProfile) []string {
	out := make([]string, 0, len(pool))
	for _, c := range pool {
		out = append(out, c.EmployeeID)
	}
	return out
}

func TestFilter_HardConstraints(t *testing.T) {
	pool := []types.CandidateProfile{
		{EmployeeID: "ok", Department: "eng", ExperienceYears: 5, Availability: 0.2},
		{EmployeeID: "busy", Department: "eng", ExperienceYears: 5, Availability: 0.9},
		{EmployeeID: "green", Department: "eng", ExperienceYears: 1, Availability: 0.1},
		{EmployeeID: "veteran", Department: "eng", ExperienceYears: 20, Availability: 0.1},
		{EmployeeID: "edge-low", Department: "ops", ExperienceYears: 2, Availability: 0.8},
		{EmployeeID: "edge-high", Department: "ops", ExperienceYears: 8, Availability: 0},
	}

	result := Evaluate(pool, baseConstraints())

	assert.Equal(t, []string{"ok", "edge-low", "edge-high"}, ids(result.Admitted))
	require.Len(t, result.Rejected, 3)
	assert.Equal(t, ReasonOverWorkload, result.Rejected[0].Reason)
	assert.Equal(t, ReasonBelowExperience, result.Rejected[1].Reason)
	assert.Equal(t, ReasonAboveExperience, result.Rejected[2].Reason)
	assert.Equal(t, 3, result.Rejected[2].Index)
	assert.Equal(t, map[string]int{"eng": 1, "ops": 2}, result.DepartmentCounts)
}

func TestFilter_DepartmentCapFirstSeenWins(t *testing.T) {
	cs := baseConstraints()
	cs.MaxPerDepartment = map[string]int{"eng": 1}

	pool := []types.CandidateProfile{
		{EmployeeID: "eng-1", Department: "eng", ExperienceYears: 4},
		{EmployeeID: "ops-1", Department: "ops", ExperienceYears: 4},
		{EmployeeID: "eng-2", Department: "eng", ExperienceYears: 4},
	}
	reversed := []types.CandidateProfile{pool[2], pool[1], pool[0]}

	assert.Equal(t, []string{"eng-1", "ops-1"}, ids(Filter(pool, cs)))
	assert.Equal(t, []string{"eng-2", "ops-1"}, ids(Filter(reversed, cs)),
		"input order decides which capped candidate survives")
}

func TestFilter_RejectedCandidatesDoNotConsumeCap(t *testing.T) {
	cs := baseConstraints()
	cs.MaxPerDepartment = map[string]int{"eng": 1}

	pool := []types.CandidateProfile{
		{EmployeeID: "eng-busy", Department: "eng", ExperienceYears: 4, Availability: 1},
		{EmployeeID: "eng-free", Department: "eng", ExperienceYears: 4, Availability: 0},
	}

	assert.Equal(t, []string{"eng-free"}, ids(Filter(pool, cs)))
}

func TestFilter_ZeroCapExcludesDepartment(t *testing.T) {
	cs := baseConstraints()
	cs.MaxPerDepartment = map[string]int{"sales": 0}

	pool := []types.CandidateProfile{
		{EmployeeID: "s", Department: "sales", ExperienceYears: 4},
		{EmployeeID: "e", Department: "eng", ExperienceYears: 4},
	}

	result := Evaluate(pool, cs)
	assert.Equal(t, []string{"e"}, ids(result.Admitted))
	assert.Equal(t, map[RejectReason]int{ReasonDepartmentCap: 1}, result.RejectionCounts())
}

func TestFilter_Idempotent(t *testing.T) {
	cs := baseConstraints()
	cs.MaxPerDepartment = map[string]int{"eng": 2, "ops": 1}

	pool := []types.CandidateProfile{
		{EmployeeID: "1", Department: "eng", ExperienceYears: 3},
		{EmployeeID: "2", Department: "ops", ExperienceYears: 5, Availability: 0.5},
		{EmployeeID: "3", Department: "eng", ExperienceYears: 9},
		{EmployeeID: "4", Department: "eng", ExperienceYears: 6},
		{EmployeeID: "5", Department: "ops", ExperienceYears: 6},
		{EmployeeID: "6", Department: "eng", ExperienceYears: 7},
		{EmployeeID: "7", Department: "qa", ExperienceYears: 2.5, Availability: 0.85},
	}

	once := Filter(pool, cs)
	twice := Filter(once, cs)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"1", "2", "4"}, ids(once))
}

func TestFilter_EveryAdmittedCandidateSatisfiesConstraints(t *testing.T) {
	cs := types.ConstraintSet{
		MinExperienceYears: 3,
		MaxExperienceYears: 6,
		MaxWorkload:        0.5,
		MaxPerDepartment:   map[string]int{"a": 2, "b": 1},
	}

	depts := []string{"a", "b", "c"}
	var pool []types.CandidateProfile
	for i := 0; i < 60; i++ {
		pool = append(pool, types.CandidateProfile{
			EmployeeID:      string(rune('A'+i%26)) + string(rune('0'+i/26)),
			Department:      depts[i%3],
			ExperienceYears: float64(i % 10),
			Availability:    float64(i%7) / 6.0,
		})
	}

	admitted := Filter(pool, cs)
	counts := make(map[string]int)
	for _, c := range admitted {
		assert.LessOrEqual(t, c.Availability, cs.MaxWorkload)
		assert.GreaterOrEqual(t, c.ExperienceYears, cs.MinExperienceYears)
		assert.LessOrEqual(t, c.ExperienceYears, cs.MaxExperienceYears)
		counts[c.Department]++
		if limit, ok := cs.MaxPerDepartment[c.Department]; ok {
			assert.LessOrEqual(t, counts[c.Department], limit)
		}
	}
	assert.NotEmpty(t, admitted)
}

func TestFilter_EmptyPoolVersusAllRejected(t *testing.T) {
	empty := Evaluate(nil, baseConstraints())
	assert.True(t, empty.EmptyPool())
	assert.False(t, empty.AllRejected())
	assert.NotNil(t, empty.Admitted)
	assert.Empty(t, empty.Admitted)

	rejected := Evaluate([]types.CandidateProfile{
		{EmployeeID: "x", Department: "eng", ExperienceYears: 30},
	}, baseConstraints())
	assert.False(t, rejected.EmptyPool())
	assert.True(t, rejected.AllRejected())
	assert.Len(t, rejected.Rejected, 1)
}

func TestFilter_ScenarioEngCapOfOne(t *testing.T) {
	cs := types.ConstraintSet{
		MaxPerDepartment:   map[string]int{"eng": 1},
		MinExperienceYears: 0,
		MaxExperienceYears: 100,
		MaxWorkload:        1,
	}
	pool := []types.CandidateProfile{
		{EmployeeID: "d1", Department: "design", ExperienceYears: 4},
		{EmployeeID: "e1", Department: "eng", ExperienceYears: 4, Skills: []string{"python"}},
		{EmployeeID: "p1", Department: "product", ExperienceYears: 4},
		{EmployeeID: "e2", Department: "eng", ExperienceYears: 4, Skills: []string{"python"}},
		{EmployeeID: "q1", Department: "qa", ExperienceYears: 4},
	}

	admitted := Filter(pool, cs)

	var eng []string
	for _, c := range admitted {
		if c.Department == "eng" {
			eng = append(eng, c.EmployeeID)
		}
	}
	assert.Equal(t, []string{"e1"}, eng)
	assert.Len(t, admitted, 4)
}
