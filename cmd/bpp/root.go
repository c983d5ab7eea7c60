package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bpp-notes/internal/client"
	"bpp-notes/internal/logger"
)

var (
	verbose bool
	host    string
	port    string
	timeout time.Duration

	exitCode = client.ExitOK
	log      = logger.Discard()
)

var rootCmd = &cobra.Command{
	Use:           "bpp",
	Short:         "Command to interact with BreadPaper notes",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}

		l, err := logger.New(cmd.ErrOrStderr(), "debug", true)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

// Execute runs the command line and exits with the operation's status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(client.ExitError)
	}
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&host, "host", "::1", "Server host")
	rootCmd.PersistentFlags().StringVar(&port, "port", "8085", "Server port")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "Request timeout")
}

// invoke dials the server, runs op and records its exit status.
func invoke(cmd *cobra.Command, op func(ctx context.Context, inv *client.Invoker) (int, error), opts ...client.Option) error {
	addr := net.JoinHostPort(host, port)

	conn, err := client.Dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Debug("connected", slog.String("addr", addr))

	opts = append([]client.Option{
		client.WithOutput(cmd.OutOrStdout()),
		client.WithTimeout(timeout),
		client.WithLogger(log),
	}, opts...)

	code, err := op(cmd.Context(), client.New(conn.Notes(), opts...))
	exitCode = code
	return err
}
