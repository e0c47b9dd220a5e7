package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobboard/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test message to the administrator chat using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger, logFile := setupLogger(debug, cfg.Log)
	defer logFile.Close()

	n := setupNotifier(cfg, logger)
	if !notifier.SendTestMessage(cmd.Context(), n, time.Now()) {
		return errors.New("test notification failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
	return nil
}
