package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobboard/internal/console"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderate jobs and applications (TUI)",
	Long:  "Opens the two-pane moderation panel. Deletes are performed as the configured administrator.",
	RunE:  runAdmin,
}

var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "List and delete applications",
}

var appsJSON bool

var applicationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, newest first",
	RunE:  runApplicationsList,
}

var applicationsDeleteCmd = &cobra.Command{
	Use:   "delete APPLICATION_ID",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplicationsDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count users, jobs and applications",
	RunE:  runStats,
}

func init() {
	applicationsListCmd.Flags().BoolVar(&appsJSON, "json", false, "print JSON")
	applicationsCmd.AddCommand(applicationsListCmd, applicationsDeleteCmd)
	rootCmd.AddCommand(adminCmd, applicationsCmd, statsCmd)
}

func runAdmin(cmd *cobra.Command, args []string) error {
	// Log output before the alt-screen starts corrupts the display.
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	return console.RunAdminPanel(a.board, a.cfg.Admin.UserID)
}

func runApplicationsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	apps, err := a.board.Applications()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if appsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(apps)
	}
	if len(apps) == 0 {
		fmt.Fprintln(out, "No applications")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tJOB\tAPPLICANT\tHANDLE\tAPPLIED")
	for _, app := range apps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			app.ID, app.JobTitle, app.ApplicantName, app.ApplicantHandle, app.AppliedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runApplicationsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.board.DeleteApplication(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted application %s\n", args[0])
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.board.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "users:        %d\njobs:         %d\napplications: %d\n", st.Users, st.Jobs, st.Applications)
	return nil
}
