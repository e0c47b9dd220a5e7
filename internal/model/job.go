package model

import (
	"context"
	"time"
)

// SystemOwner is the owner recorded on jobs created by seeding.
const SystemOwner = "SYSTEM"

// Category groups job listings on the board.
type Category string

const (
	CategoryIT           Category = "IT"
	CategoryMarketing    Category = "Marketing"
	CategoryDesign       Category = "Design"
	CategorySales        Category = "Sales"
	CategoryFinance      Category = "Finance"
	CategoryManagement   Category = "Management"
	CategoryConstruction Category = "Construction"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryIT, CategoryMarketing, CategoryDesign, CategorySales,
	CategoryFinance, CategoryManagement, CategoryConstruction,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// JobType is the employment arrangement of a listing.
type JobType string

const (
	JobTypeFullTime JobType = "Full-time"
	JobTypeRemote   JobType = "Remote"
	JobTypeContract JobType = "Contract"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypeRemote, JobTypeContract:
		return true
	}
	return false
}

// User is a board member, keyed externally by Handle.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Handle    string `json:"handle"` // telegram-style handle, e.g. "@jane"
	AvatarURL string `json:"avatarUrl"`
}

// Job is a single listing. OwnerID is empty for jobs nobody owns.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Salary       string    `json:"salary"`
	Category     Category  `json:"category"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	PostedAt     time.Time `json:"postedAt"`
	LogoURL      string    `json:"logoUrl"`
	IsHot        bool      `json:"isHot"`
	Type         JobType   `json:"type"`
	OwnerID      string    `json:"ownerId,omitempty"`
}

// Application records one applicant's submission to a job. JobTitle is a copy
// taken at submission time and does not follow later edits of the job.
type Application struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	JobID           string    `json:"jobId"`
	JobTitle        string    `json:"jobTitle"`
	ApplicantName   string    `json:"applicantName"`
	ApplicantHandle string    `json:"applicantHandle"`
	AppliedAt       time.Time `json:"appliedAt"`
}

// Notifier delivers a formatted message to the administrator chat.
// It reports delivery success and never returns an error.
type Notifier interface {
	Notify(ctx context.Context, text string) bool
}

// JobFilter decides whether a job matches the user's criteria.
type JobFilter interface {
	Match(job Job) bool
}
