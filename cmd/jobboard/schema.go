package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobboard/internal/board"
	"github.com/amishk599/jobboard/internal/model"
)

var schemaOut string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print JSON Schemas of the stored records",
	Long:  "Prints JSON Schemas for users, jobs, applications and job submissions, keyed by record name.",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(schemaCmd)
}

// recordSchemas reflects every persisted record plus the job submission body.
func recordSchemas() map[string]*jsonschema.Schema {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	schemas := map[string]*jsonschema.Schema{
		"user":        r.Reflect(&model.User{}),
		"job":         r.Reflect(&model.Job{}),
		"application": r.Reflect(&model.Application{}),
		"jobDraft":    r.Reflect(&board.JobDraft{}),
	}
	schemas["user"].Title = "User"
	schemas["job"].Title = "Job"
	schemas["application"].Title = "Application"
	schemas["jobDraft"].Title = "Job submission"
	return schemas
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(recordSchemas(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if schemaOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(schemaOut, data, 0o600); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", schemaOut)
	return nil
}
