package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amishk599/jobboard/internal/board"
	"github.com/amishk599/jobboard/internal/console"
	"github.com/amishk599/jobboard/internal/filter"
	"github.com/amishk599/jobboard/internal/model"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Browse, post, delete and apply to jobs",
}

var (
	listSearch   string
	listCategory string
	listJSON     bool
)

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	RunE:  runJobsList,
}

var postDraft board.JobDraft

var jobsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a job owned by the current user",
	Long:  "Posts a job owned by the logged-in user. Without --category on a terminal a category picker is shown.",
	RunE:  runJobsPost,
}

var deleteAsAdmin bool

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete JOB_ID",
	Short: "Delete a job you own",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsDelete,
}

var (
	applyName   string
	applyHandle string
)

var jobsApplyCmd = &cobra.Command{
	Use:   "apply JOB_ID",
	Short: "Apply to a job",
	Long:  "Records an application and alerts the administrator. Name and handle default to the current user.",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsApply,
}

var jobsShareCmd = &cobra.Command{
	Use:   "share JOB_ID",
	Short: "Print the share text of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShare,
}

func init() {
	jobsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "match title or company (case-insensitive)")
	jobsListCmd.Flags().StringVar(&listCategory, "category", "", "only this category")
	jobsListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	f := jobsPostCmd.Flags()
	f.StringVar(&postDraft.Title, "title", "", "job title (min 5 characters)")
	f.StringVar(&postDraft.Company, "company", "", "company name")
	f.StringVar(&postDraft.Location, "location", "", "location")
	f.StringVar(&postDraft.Salary, "salary", "", "salary, free text")
	f.StringVar((*string)(&postDraft.Category), "category", "", "category: "+joinCategories())
	f.StringVar((*string)(&postDraft.Type), "type", "", "Full-time, Remote or Contract (default Full-time)")
	f.StringVar(&postDraft.Description, "description", "", "description (min 20 characters)")
	f.StringVar(&postDraft.Requirements, "requirements", "", "comma-separated requirements")
	f.BoolVar(&postDraft.IsHot, "hot", false, "mark as hot")

	jobsDeleteCmd.Flags().BoolVar(&deleteAsAdmin, "as-admin", false, "delete as the configured administrator")

	jobsApplyCmd.Flags().StringVar(&applyName, "name", "", "applicant name (min 3 characters)")
	jobsApplyCmd.Flags().StringVar(&applyHandle, "handle", "", "applicant telegram handle")

	jobsCmd.AddCommand(jobsListCmd, jobsPostCmd, jobsDeleteCmd, jobsApplyCmd, jobsShareCmd)
	rootCmd.AddCommand(jobsCmd)
}

func joinCategories() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func runJobsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	var jf model.JobFilter
	if listSearch != "" || listCategory != "" {
		jf = filter.NewSearchFilter(listSearch, model.Category(listCategory))
	}
	jobs, err := a.board.Jobs(jf)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}
	printJobs(out, jobs)
	return nil
}

func printJobs(out io.Writer, jobs []model.Job) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tCATEGORY\tTYPE\tSALARY\tPOSTED")
	for _, j := range jobs {
		title := j.Title
		if j.IsHot {
			title = "🔥 " + title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, title, j.Company, j.Category, j.Type, j.Salary, j.PostedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func runJobsPost(cmd *cobra.Command, args []string) error {
	if postDraft.Category == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		options := make([]string, len(model.Categories))
		for i, c := range model.Categories {
			options[i] = string(c)
		}
		idx, err := console.RunPicker("Select a category", options)
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}
		postDraft.Category = model.Categories[idx]
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.currentUser()
	if err != nil {
		return err
	}
	job, err := a.board.PostJob(cmd.Context(), postDraft, u.ID)
	if err != nil {
		return explain(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %q (%s)\n", job.Title, job.ID)
	return nil
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	requester := a.cfg.Admin.UserID
	if !deleteAsAdmin {
		u, err := a.currentUser()
		if err != nil {
			return err
		}
		requester = u.ID
	}

	jobID := args[0]
	if _, err := a.board.Job(jobID); err != nil {
		return err
	}
	ok, err := a.board.DeleteJob(jobID, requester)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("job %s: %w: only the owner or the administrator may delete it", jobID, model.ErrForbidden)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", jobID)
	return nil
}

func runJobsApply(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.session.Current()
	if err != nil {
		return err
	}
	name, handle := applyName, applyHandle
	if u != nil {
		if name == "" {
			name = u.Name
		}
		if handle == "" {
			handle = u.Handle
		}
	}

	app, notified, err := a.board.Apply(cmd.Context(), args[0], u, name, handle)
	if err != nil {
		return explain(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied to %q as %s\n", app.JobTitle, app.ApplicantHandle)
	if !notified {
		fmt.Fprintln(cmd.OutOrStdout(), "The administrator could not be notified; the application is saved.")
	}
	return nil
}

func runJobsShare(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.board.Job(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.board.ShareText(job))
	return nil
}

// explain expands validation errors into one line per field.
func explain(err error) error {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString(verr.Error())
	for _, f := range fields {
		fmt.Fprintf(&b, "\n  %s %s", f, verr.Fields[f])
	}
	return errors.New(b.String())
}
