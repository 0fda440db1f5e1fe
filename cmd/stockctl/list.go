package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/currency"

	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/listquery"
	"github.com/odyssey-erp/stockroom/internal/shared"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

type listOptions struct {
	query    string
	set      []string
	clear    []string
	currency string
	timeout  time.Duration
	retries  int
}

func listCmd(global *globalOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list <page>",
		Short: "Fetch one page of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, err := currency.ParseISO(opts.currency)
			if err != nil {
				return fmt.Errorf("invalid currency %q: %w", opts.currency, err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			client := listing.NewClient(global.server, &http.Client{Timeout: opts.timeout})
			return runList(ctx, cmd.OutOrStdout(), client, args[0], opts, unit)
		},
	}
	cmd.Flags().StringVar(&opts.query, "query", "", "Starting query string, as found in a page URL")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Set a filter, key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.clear, "clear", nil, "Clear a filter (repeatable)")
	cmd.Flags().StringVar(&opts.currency, "currency", "USD", "ISO currency of money columns")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "Overall request timeout")
	cmd.Flags().IntVar(&opts.retries, "retries", 2, "Attempts per fetch")
	return cmd
}

// runList replays the filter changes on an in-memory location, lets the
// list query follow it and prints the settled result.
func runList(ctx context.Context, w io.Writer, client *listing.Client, page string, opts *listOptions, unit currency.Unit) error {
	schema, ok := registry().Lookup(page)
	if !ok {
		return fmt.Errorf("unknown page %q, see 'stockctl pages'", page)
	}

	nav := urlstate.NewMemoryNavigator(urlstate.ParseQuery(opts.query))
	for _, key := range opts.clear {
		control, err := controlFor(nav, schema, key)
		if err != nil {
			return err
		}
		control.Clear()
	}
	for _, pair := range opts.set {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return fmt.Errorf("invalid --set %q, want key=value", pair)
		}
		control, err := controlFor(nav, schema, key)
		if err != nil {
			return err
		}
		if err := control.SetValue(value); err != nil {
			return err
		}
	}

	query := listquery.New[map[string]any](schema, listing.Fetcher[map[string]any](client, schema),
		listquery.WithRetry[map[string]any](opts.retries, 300*time.Millisecond),
	)
	query.Sync(ctx, nav.Location())
	if err := query.Wait(ctx); err != nil {
		return err
	}
	res := query.Result()
	if res.IsError {
		var actionErr *listquery.ActionError
		if errors.As(res.Err, &actionErr) {
			return fmt.Errorf("%s: %s", page, actionErr.Message)
		}
		return res.Err
	}

	fmt.Fprintf(w, "%s\n\n", client.URL(page, res.Filters, schema))
	if err := renderTable(w, page, res.Items, unit); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", summary(res, schema))
	return nil
}

func controlFor(nav urlstate.Navigator, schema urlstate.Schema, key string) (*urlstate.Control, error) {
	dim, ok := schema.Dimension(key)
	if !ok {
		return nil, fmt.Errorf("%s has no filter %q", schema.Name, key)
	}
	opts := []urlstate.ControlOption{urlstate.WithAllValue(listing.AllValue)}
	if key != listing.PageKey {
		opts = append(opts, urlstate.WithResetKeys(listing.PageKey))
	}
	return urlstate.NewControl(nav, dim, opts...), nil
}

func summary(res listquery.Result[map[string]any], schema urlstate.Schema) string {
	if _, paged := schema.Dimension(listing.PageKey); !paged {
		return fmt.Sprintf("%d of %d", len(res.Items), res.Total)
	}
	p := shared.NewPagination(res.Filters.Int(listing.PageKey), shared.DefaultPageSize, res.Total)
	return fmt.Sprintf("page %d of %d, %d total", p.Page, max(p.TotalPages, 1), res.Total)
}
