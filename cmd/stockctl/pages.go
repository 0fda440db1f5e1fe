package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/stockroom/internal/app"
	"github.com/odyssey-erp/stockroom/internal/listing"
	"github.com/odyssey-erp/stockroom/internal/urlstate"
)

func registry() *listing.Registry {
	return listing.NewRegistry(app.ListSchemas()...)
}

func pagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List the pages and their filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePages(cmd.OutOrStdout(), registry())
		},
	}
}

func writePages(w io.Writer, reg *listing.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tFILTERS")
	for _, name := range reg.Names() {
		schema, _ := reg.Lookup(name)
		fmt.Fprintf(tw, "%s\t%s\n", name, describe(schema))
	}
	return tw.Flush()
}

func describe(schema urlstate.Schema) string {
	parts := make([]string, 0, len(schema.Dimensions))
	for _, d := range schema.Dimensions {
		part := d.Key
		if len(d.Allowed) > 0 {
			part += "=" + strings.Join(d.Allowed, "|")
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}
