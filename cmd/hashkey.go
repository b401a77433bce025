package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/huangsam/courseload/internal/api"
)

// hashKeyCmd prints the bcrypt hash of an API key read from stdin.
var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Hash an API key for the serve command's --api-key-hash",
	Long: `Read an API key from stdin and print its bcrypt hash. On a terminal the key is not echoed.

Examples:
  echo -n s3cret | courseload hash-key`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := readKey()
		if err != nil {
			return err
		}
		hash, err := api.HashAPIKey(key)
		if err != nil {
			return fmt.Errorf("failed to hash key: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func readKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		_, _ = fmt.Fprint(os.Stderr, "API key: ")
		b, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return nonEmptyKey(string(b))
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return nonEmptyKey(line)
}

func nonEmptyKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty API key")
	}
	return s, nil
}
