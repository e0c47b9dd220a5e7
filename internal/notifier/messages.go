package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/amishk599/jobboard/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates are parsed once at package init. html/template escapes every
// value, which is what Telegram's HTML parse mode expects.
var messageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// DateLayout formats timestamps in chat messages.
const DateLayout = "02.01.2006 15:04"

type applicationMessage struct {
	JobTitle        string
	Company         string
	ApplicantName   string
	ApplicantHandle string
	Date            string
}

type jobMessage struct {
	Company  string
	Title    string
	Salary   string
	Location string
	Date     string
}

// NewApplicationMessage renders the administrator alert for a submission.
// company may be empty when the job no longer exists.
func NewApplicationMessage(app model.Application, company string) string {
	return render("new_application.html", applicationMessage{
		JobTitle:        app.JobTitle,
		Company:         company,
		ApplicantName:   app.ApplicantName,
		ApplicantHandle: app.ApplicantHandle,
		Date:            app.AppliedAt.Format(DateLayout),
	})
}

// NewJobMessage renders the administrator alert for a freshly posted job.
func NewJobMessage(job model.Job) string {
	return render("new_job.html", jobMessage{
		Company:  job.Company,
		Title:    job.Title,
		Salary:   job.Salary,
		Location: job.Location,
		Date:     job.PostedAt.Format(DateLayout),
	})
}

// TestMessage renders a message used to verify the chat integration.
func TestMessage(now time.Time) string {
	return render("test.html", struct{ Date string }{Date: now.Format(DateLayout)})
}

// ShareCallToAction closes every share text.
const ShareCallToAction = "🚀 A new opportunity on ArchitectJobs!"

// ShareText is the plain-text blurb users copy when sharing a job.
func ShareText(job model.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏢 %s \u2014 %s\n", job.Company, job.Title)
	fmt.Fprintf(&b, "📍 %s\n", job.Location)
	fmt.Fprintf(&b, "💰 %s\n", job.Salary)
	b.WriteString(ShareCallToAction)
	return b.String()
}

// SendTestMessage sends TestMessage through n.
func SendTestMessage(ctx context.Context, n model.Notifier, now time.Time) bool {
	return n.Notify(ctx, TestMessage(now))
}

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		// templates are embedded and their data types fixed
		panic(fmt.Sprintf("render %s: %v", name, err))
	}
	return strings.TrimRight(buf.String(), "\n")
}
