package score

import (
	"cmp"
	"slices"

	"github.com/aunovis/secure-sum/pkg/metric"
	"github.com/aunovis/secure-sum/pkg/probe"
)

// RepoData is the scored view of one probe record.
type RepoData struct {
	Repo         string
	Score        float64
	Outcomes     []CumulatedOutcome
	ErrorMessage string
}

// NewRepoData scores r against m.
func NewRepoData(r *probe.Result, m *metric.Metric) RepoData {
	weighed := WeighedFindings(r, m)
	return RepoData{
		Repo:         r.Repo.Name,
		Score:        TotalScore(weighed),
		Outcomes:     CumulatedOutcomes(weighed),
		ErrorMessage: r.ErrorMessage,
	}
}

// Sort orders repos by descending score, then by name.
func Sort(repos []RepoData) {
	slices.SortStableFunc(repos, func(a, b RepoData) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Repo, b.Repo)
	})
}
