package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandgrid/sandgrid-go/filesystem"
	"github.com/sandgrid/sandgrid-go/progress"
)

func newFsCmd(root *rootOptions) *cobra.Command {
	fsCmd := &cobra.Command{
		Use:   "fs",
		Short: "File operations inside a session",
	}
	fsCmd.AddCommand(newFsGetCmd(root))
	fsCmd.AddCommand(newFsPutCmd(root))
	fsCmd.AddCommand(newFsWatchCmd(root))
	return fsCmd
}

// stderrReporter prints transfer progress without polluting stdout
func stderrReporter() progress.Reporter {
	return progress.NewCallbackReporter(func(u progress.Update) {
		switch u.Type {
		case progress.UpdateProgress:
			fmt.Fprintf(os.Stderr, "\r%s / %s (%s)",
				progress.FormatBytes(u.Bytes), progress.FormatBytes(u.Total), progress.FormatSpeed(u.BytesPerSecond))
		case progress.UpdateComplete:
			fmt.Fprintf(os.Stderr, "\r%s transferred\n", progress.FormatBytes(u.Total))
		case progress.UpdateError:
			fmt.Fprintln(os.Stderr)
		}
	})
}

func newFsGetCmd(root *rootOptions) *cobra.Command {
	var (
		sessionID string
		output    string
		chunkSize int64
	)

	cmd := &cobra.Command{
		Use:   "get <remote-path>",
		Short: "Download a file from a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd.Context())
			if err != nil {
				return err
			}

			session, err := client.GetSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			fs := session.FileSystem()
			if output != "" {
				fs.SetProgressReporter(stderrReporter())
			}

			content, err := fs.ReadLargeFile(cmd.Context(), args[0], chunkSize)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Print(content)
				return nil
			}
			return os.WriteFile(output, []byte(content), 0644)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "local file to write (default stdout)")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", 0, "transfer chunk size in bytes (default 50 KiB)")
	cmd.MarkFlagRequired("session")

	return cmd
}

func newFsPutCmd(root *rootOptions) *cobra.Command {
	var (
		sessionID string
		chunkSize int64
	)

	cmd := &cobra.Command{
		Use:   "put <local-path> <remote-path>",
		Short: "Upload a file into a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			client, err := root.client(cmd.Context())
			if err != nil {
				return err
			}

			session, err := client.GetSession(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			fs := session.FileSystem()
			fs.SetProgressReporter(stderrReporter())

			return fs.WriteLargeFile(cmd.Context(), args[1], string(content), chunkSize)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (required)")
	cmd.Flags().Int64Var(&chunkSize, "chunk-size", 0, "transfer chunk size in bytes (default 50 KiB)")
	cmd.MarkFlagRequired("session")

	return cmd
}

func newFsWatchCmd(root *rootOptions) *cobra.Command {
	var (
		sessionID string
		interval  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <remote-directory>",
		Short: "Watch a session directory for changes until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := root.client(ctx)
			if err != nil {
				return err
			}

			session, err := client.GetSession(ctx, sessionID)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "watching %s (interrupt to stop)\n", args[0])

			return session.FileSystem().WatchDirectory(ctx, args[0], interval, func(events []filesystem.ChangeEvent) {
				for _, event := range events {
					fmt.Printf("%s\t%s\t%s\n", event.EventType, event.PathType, event.Path)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (required)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default 500ms)")
	cmd.MarkFlagRequired("session")

	return cmd
}
