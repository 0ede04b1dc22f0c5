// -- cmd/dump.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/domkit/internal/dump"
)

func newDumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Prints the parsed document tree as JSON",
		Long: `Parses a file and writes its document tree to standard output. The json
format is a plain nested tree; the cdp format is a DevTools protocol DOM.Node
snapshot with node ids.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if format != "json" && format != "cdp" {
				return fmt.Errorf("unknown dump format %q, want json or cdp", format)
			}

			doc, err := loadDocument(cfg, args[0])
			if err != nil {
				return err
			}
			defer doc.Release()

			var out any
			if format == "cdp" {
				out = dump.CDP(doc.Node())
			} else {
				out = dump.Tree(doc.Node())
			}
			return dump.WriteJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or cdp")
	return cmd
}
