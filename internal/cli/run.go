package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		sessionID string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a shell command inside a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd.Context())
			if err != nil {
				return err
			}

			session, err := client.GetSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			output, err := session.Command().Execute(cmd.Context(), strings.Join(args, " "), timeout)
			if err != nil {
				return err
			}

			fmt.Print(output)
			if output != "" && !strings.HasSuffix(output, "\n") {
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (required)")
	cmd.Flags().DurationVar(&timeout, "exec-timeout", 0, "remote execution limit (default: service decides)")
	cmd.MarkFlagRequired("session")

	return cmd
}
