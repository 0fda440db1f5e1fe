// Command stockctl drives the list pages of a stockroom server from the
// terminal, applying filter changes the same way the dashboard does.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type globalOptions struct {
	server    string
	redisAddr string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "stockctl",
		Short: "Browse and filter stockroom lists from the terminal",
		Long: `stockctl reads the list pages of a stockroom server.

Filters are applied with --set and --clear exactly like the dashboard
controls: setting a filter drops the page number, "all" and empty values
remove the filter from the query.

Examples:
  stockctl pages
  stockctl list products --set lowStock=true
  stockctl list orders --query "status=PENDING" --set paymentStatus=PAID
  stockctl jobs trigger stock:low-scan`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("STOCKROOM_URL", defaultServer), "Base URL of the stockroom server")
	root.PersistentFlags().StringVar(&opts.redisAddr, "redis", envOr("REDIS_ADDR", "127.0.0.1:6379"), "Redis address of the job queue")

	root.AddCommand(
		pagesCmd(),
		listCmd(opts),
		jobsCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
