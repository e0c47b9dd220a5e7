package store

import (
	"fmt"
	"net/url"
	"time"

	"github.com/amishk599/jobboard/internal/model"
)

// CompanyLogoURL derives the deterministic logo reference for a company.
func CompanyLogoURL(company string) string {
	return "https://api.dicebear.com/7.x/identicon/svg?seed=" + url.QueryEscape(company)
}

// SeedJobs returns the built-in listings inserted into an empty board.
// PostedAt values are relative to now.
func SeedJobs(now time.Time) []model.Job {
	return []model.Job{
		{
			ID:           "seed-1",
			Title:        "Senior Product Designer",
			Company:      "NeoTech Systems",
			Location:     "Tashkent, IT Park",
			Salary:       "$3,500 - $5,000",
			Category:     model.CategoryDesign,
			Description:  "We need a senior designer who understands neo-modernist design systems.",
			Requirements: []string{"5+ years of experience", "Figma mastery", "Design systems expertise"},
			PostedAt:     now.Add(-2 * time.Hour),
			LogoURL:      CompanyLogoURL("neotech"),
			IsHot:        true,
			Type:         model.JobTypeFullTime,
		},
		{
			ID:           "seed-2",
			Title:        "Full Stack Engineer (Node/React)",
			Company:      "FinSphere Global",
			Location:     "Tashkent / Remote",
			Salary:       "25,000,000 - 40,000,000 UZS",
			Category:     model.CategoryIT,
			Description:  "Looking for an experienced developer to build high-load financial systems.",
			Requirements: []string{"React/Next.js", "Node.js/Express", "PostgreSQL", "AWS"},
			PostedAt:     now.Add(-5 * time.Hour),
			LogoURL:      CompanyLogoURL("finsphere"),
			IsHot:        false,
			Type:         model.JobTypeRemote,
		},
		{
			ID:           "seed-3",
			Title:        "Marketing Director",
			Company:      "CreativeFlow Agency",
			Location:     "Tashkent, Amir Temur street",
			Salary:       "15,000,000 UZS + Bonus",
			Category:     model.CategoryMarketing,
			Description:  "A creative strategist to take our brand to the international level.",
			Requirements: []string{"Brand strategy", "SMM/SEO analytics", "Team leadership"},
			PostedAt:     now.Add(-26 * time.Hour),
			LogoURL:      CompanyLogoURL("creative"),
			IsHot:        true,
			Type:         model.JobTypeFullTime,
		},
	}
}

// SeedIfEmpty inserts the seed jobs owned by model.SystemOwner when the jobs
// collection is empty. It reports whether seeding happened. The check and the
// write happen under one lock, so concurrent callers seed at most once.
func (s *Store) SeedIfEmpty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := readCollection[model.Job](s.backend, JobsKey)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if len(jobs) > 0 {
		return false, nil
	}

	seed := SeedJobs(s.now())
	for i := range seed {
		seed[i].OwnerID = model.SystemOwner
	}
	if err := writeCollection(s.backend, JobsKey, seed); err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	s.logger.Info("seeded empty board", "jobs", len(seed))
	return true, nil
}
