package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amishk599/jobboard/internal/model"
)

var posted = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNewApplicationMessage(t *testing.T) {
	msg := NewApplicationMessage(model.Application{
		JobTitle:        "Go Developer",
		ApplicantName:   "Jane Doe",
		ApplicantHandle: "@jane",
		AppliedAt:       posted,
	}, "Acme")

	assert.Contains(t, msg, "<b>Job:</b> Go Developer")
	assert.Contains(t, msg, "<b>Company:</b> Acme")
	assert.Contains(t, msg, "<b>Applicant:</b> Jane Doe")
	assert.Contains(t, msg, "<b>Telegram:</b> @jane")
	assert.Contains(t, msg, "14.03.2026 09:30")
}

func TestNewJobMessage(t *testing.T) {
	msg := NewJobMessage(model.Job{
		Title:    "Designer",
		Company:  "Studio",
		Salary:   "$2,000",
		Location: "Tashkent",
		PostedAt: posted,
	})

	assert.Contains(t, msg, "<b>Company:</b> Studio")
	assert.Contains(t, msg, "<b>Position:</b> Designer")
	assert.Contains(t, msg, "<b>Salary:</b> $2,000")
	assert.Contains(t, msg, "<b>Location:</b> Tashkent")
}

func TestMessages_EscapeUserInput(t *testing.T) {
	msg := NewApplicationMessage(model.Application{
		JobTitle:      "<script>alert(1)</script>",
		ApplicantName: "Tom & Jerry",
		AppliedAt:     posted,
	}, "A<B")

	assert.NotContains(t, msg, "<script>")
	assert.Contains(t, msg, "&lt;script&gt;")
	assert.Contains(t, msg, "Tom &amp; Jerry")
	assert.Contains(t, msg, "A&lt;B")
}

func TestShareText(t *testing.T) {
	got := ShareText(model.Job{Company: "Acme", Title: "Engineer", Location: "Remote", Salary: "$5k"})
	assert.Equal(t, "🏢 Acme \u2014 Engineer\n📍 Remote\n💰 $5k\n🚀 A new opportunity on ArchitectJobs!", got)
}
