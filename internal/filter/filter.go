package filter

import (
	"strings"

	"github.com/amishk599/jobboard/internal/model"
)

// Ensure SearchFilter implements model.JobFilter.
var _ model.JobFilter = (*SearchFilter)(nil)

// SearchFilter matches jobs whose title or company contains the search term
// and, when set, whose category equals the selected one.
// Matching is case-insensitive. An empty term or category matches all.
type SearchFilter struct {
	term     string
	category model.Category
}

// NewSearchFilter returns a filter for the board's search box and category tabs.
func NewSearchFilter(term string, category model.Category) *SearchFilter {
	return &SearchFilter{
		term:     strings.ToLower(strings.TrimSpace(term)),
		category: category,
	}
}

// Match returns true if the job passes both the term and the category check.
func (f *SearchFilter) Match(job model.Job) bool {
	if f.category != "" && job.Category != f.category {
		return false
	}
	if f.term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(job.Title), f.term) ||
		strings.Contains(strings.ToLower(job.Company), f.term)
}

// Apply returns the jobs that f matches, preserving order. A nil filter keeps all.
func Apply(f model.JobFilter, jobs []model.Job) []model.Job {
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if f == nil || f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}
