package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/amishk599/jobboard/internal/secrets"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Store credentials in the OS keychain",
	Long: "Stores the Telegram bot token and the AI API key in the OS keychain. " +
		"Values in the config file take precedence.\nNames: " + strings.Join(secrets.Names, ", "),
}

var secretsSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Prompt for a secret and store it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretsSet,
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a stored secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretsDelete,
}

func init() {
	secretsCmd.AddCommand(secretsSetCmd, secretsDeleteCmd)
	rootCmd.AddCommand(secretsCmd)
}

func checkSecretName(name string) error {
	if !slices.Contains(secrets.Names, name) {
		return fmt.Errorf("unknown secret %q, expected one of: %s", name, strings.Join(secrets.Names, ", "))
	}
	return nil
}

// readSecret prompts without echo on a terminal and reads one line otherwise.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runSecretsSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := checkSecretName(name); err != nil {
		return err
	}
	value, err := readSecret(fmt.Sprintf("Enter %s: ", name))
	if err != nil {
		return err
	}
	if value == "" {
		return errors.New("empty value, nothing stored")
	}
	if err := secrets.NewKeyring().Set(name, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %s in the keychain\n", name)
	return nil
}

func runSecretsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := checkSecretName(name); err != nil {
		return err
	}
	err := secrets.NewKeyring().Delete(name)
	if errors.Is(err, secrets.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s was not stored\n", name)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
	return nil
}
