package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	sandgrid "github.com/sandgrid/sandgrid-go"
)

func newSessionCmd(root *rootOptions) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Session lifecycle operations",
	}
	sessionCmd.AddCommand(newSessionCreateCmd(root))
	sessionCmd.AddCommand(newSessionListCmd(root))
	sessionCmd.AddCommand(newSessionDeleteCmd(root))
	return sessionCmd
}

func newSessionCreateCmd(root *rootOptions) *cobra.Command {
	var (
		labelPairs []string
		imageID    string
		region     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sandbox session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			labels, err := parseLabels(labelPairs)
			if err != nil {
				return err
			}

			client, err := root.client(cmd.Context())
			if err != nil {
				return err
			}

			session, err := client.CreateSession(cmd.Context(), &sandgrid.CreateSessionOptions{
				Region:  region,
				ImageID: imageID,
				Labels:  labels,
			})
			if err != nil {
				return err
			}

			fmt.Println(session.ID())
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "session label as key=value (repeatable)")
	cmd.Flags().StringVar(&imageID, "image", "", "sandbox image id")
	cmd.Flags().StringVar(&region, "session-region", "", "region for this session (overrides --region)")

	return cmd
}

func newSessionListCmd(root *rootOptions) *cobra.Command {
	var labelPairs []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			labels, err := parseLabels(labelPairs)
			if err != nil {
				return err
			}

			client, err := root.client(cmd.Context())
			if err != nil {
				return err
			}

			sessions, err := client.ListSessions(cmd.Context(), labels)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION ID\tSTATUS\tREGION\tLABELS")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.SessionID, s.Status, s.Region, formatLabels(s.Labels))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVar(&labelPairs, "label", nil, "filter by label as key=value (repeatable)")

	return cmd
}

func newSessionDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd.Context())
			if err != nil {
				return err
			}

			if err := client.DeleteSession(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Println("deleted", args[0])
			return nil
		},
	}
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return "-"
	}

	pairs := make([]string, 0, len(labels))
	for key, value := range labels {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
