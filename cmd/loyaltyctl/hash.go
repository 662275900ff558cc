package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/diagnosis/shelter-loyalty/pkg/auth"
	"github.com/spf13/cobra"
)

func newHashCmd() *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "hash [password]",
		Short: "Print a STAFF_PASSWORD_HASH or STAFF_PASSWORD_SHA256 value",
		Long: "Hashes the staff password with the chosen scheme. When no argument is given " +
			"the password is read from the first line of stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			out, err := auth.HashPassword(auth.Scheme(scheme), password)
			if err != nil {
				return err
			}
			envVar := "STAFF_PASSWORD_HASH"
			if auth.Scheme(scheme) == auth.SchemeSHA256 {
				envVar = "STAFF_PASSWORD_SHA256"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", envVar, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", string(auth.SchemeArgon2id), "argon2id, bcrypt or sha256")
	return cmd
}
