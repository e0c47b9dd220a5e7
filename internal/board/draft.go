package board

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amishk599/jobboard/internal/model"
)

// Field length limits for submissions.
const (
	MinTitleLen       = 5
	MinDescriptionLen = 20
	MinNameLen        = 3
)

// JobDraft is a job as submitted by a user, before ids and derived fields
// are filled in.
type JobDraft struct {
	Title        string         `json:"title"`
	Company      string         `json:"company"`
	Location     string         `json:"location"`
	Salary       string         `json:"salary"`
	Category     model.Category `json:"category"`
	Type         model.JobType  `json:"type"`
	Description  string         `json:"description"`
	Requirements string         `json:"requirements"` // comma-separated
	IsHot        bool           `json:"isHot"`
}

func (d JobDraft) normalized() JobDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Company = strings.TrimSpace(d.Company)
	d.Location = strings.TrimSpace(d.Location)
	d.Salary = strings.TrimSpace(d.Salary)
	d.Description = strings.TrimSpace(d.Description)
	if d.Category == "" {
		d.Category = model.CategoryIT
	}
	if d.Type == "" {
		d.Type = model.JobTypeFullTime
	}
	return d
}

// Validate reports every rejected field at once.
func (d JobDraft) Validate() error {
	fields := map[string]string{}
	if utf8.RuneCountInString(d.Title) < MinTitleLen {
		fields["title"] = "must be at least 5 characters"
	}
	if d.Company == "" {
		fields["company"] = "is required"
	}
	if d.Salary == "" {
		fields["salary"] = "is required"
	}
	if utf8.RuneCountInString(d.Description) < MinDescriptionLen {
		fields["description"] = "must be at least 20 characters"
	}
	if !d.Category.Valid() {
		fields["category"] = "is not a known category"
	}
	if !d.Type.Valid() {
		fields["type"] = "is not a known job type"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

func (d JobDraft) toJob(now time.Time) model.Job {
	return model.Job{
		Title:        d.Title,
		Company:      d.Company,
		Location:     d.Location,
		Salary:       d.Salary,
		Category:     d.Category,
		Description:  d.Description,
		Requirements: SplitRequirements(d.Requirements),
		PostedAt:     now,
		LogoURL:      LogoURL(d.Company),
		IsHot:        d.IsHot,
		Type:         d.Type,
	}
}

// SplitRequirements turns a comma-separated list into trimmed, non-empty items.
func SplitRequirements(s string) []string {
	out := []string{}
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func validateApplicant(name, handle string) error {
	fields := map[string]string{}
	if utf8.RuneCountInString(name) < MinNameLen {
		fields["name"] = "must be at least 3 characters"
	}
	if handle == "" {
		fields["handle"] = "is required"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}

func validateIdentity(name, handle string) error {
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if handle == "" {
		fields["handle"] = "is required"
	}
	if len(fields) > 0 {
		return &model.ValidationError{Fields: fields}
	}
	return nil
}
