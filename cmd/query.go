// -- cmd/query.go --
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/domkit/internal/config"
	"github.com/xkilldash9x/domkit/internal/dom"
	"github.com/xkilldash9x/domkit/internal/dump"
	"github.com/xkilldash9x/domkit/internal/observability"
)

type queryOptions struct {
	selector    string
	all         bool
	format      string
	concurrency int
}

// queryResult holds the matches for one input file.
type queryResult struct {
	File    string           `json:"file"`
	Matches []*dump.NodeJSON `json:"matches"`
	// text lines are rendered while the document is still alive.
	lines []string
}

func newQueryCmd() *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query -s <selector> [files...]",
		Short: "Runs a CSS selector against one or more HTML or XML files",
		Long: `Parses each file into its own document and prints the elements the selector
matches. Files ending in .xml, .svg or .xhtml are parsed as XML, everything else
as HTML. Use "-" to read standard input.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.SetQueryFormat(opts.format)
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.SetQueryConcurrency(opts.concurrency)
			}
			queryCfg := cfg.Query()
			if err := queryCfg.Validate(); err != nil {
				return err
			}
			return runQuery(cmd, cfg, opts, args)
		},
	}
	cmd.Flags().StringVarP(&opts.selector, "selector", "s", "", "CSS selector to match (required)")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "print every match instead of the first")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: text or json (default from query.default_format)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "files parsed in parallel (default from query.concurrency)")
	_ = cmd.MarkFlagRequired("selector")
	return cmd
}

func runQuery(cmd *cobra.Command, cfg config.Interface, opts *queryOptions, files []string) error {
	logger := observability.Named("query")
	format := cfg.Query().DefaultFormat
	results := make([]queryResult, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Query().Concurrency)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := queryFile(cfg, file, opts.selector, opts.all, format)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	matches := 0
	for _, r := range results {
		matches += len(r.Matches)
	}
	logger.Debug("Query complete",
		zap.String("selector", opts.selector),
		zap.Int("files", len(files)),
		zap.Int("matches", matches),
	)
	return writeQueryResults(cmd.OutOrStdout(), results, format)
}

// queryFile loads one file, runs the selector and converts the matches
// before the document is released.
func queryFile(cfg config.Interface, file, selector string, all bool, format string) (queryResult, error) {
	res := queryResult{File: file, Matches: []*dump.NodeJSON{}}
	doc, err := loadDocument(cfg, file)
	if err != nil {
		return res, err
	}
	defer doc.Release()

	var found []*dom.Node
	if all {
		list, err := doc.QuerySelectorAll(selector)
		if err != nil {
			return res, fmt.Errorf("%s: %w", file, err)
		}
		defer list.Release()
		found = list.Slice()
	} else {
		n, err := doc.QuerySelector(selector)
		if err != nil {
			return res, fmt.Errorf("%s: %w", file, err)
		}
		if n != nil {
			found = []*dom.Node{n}
		}
	}

	for _, n := range found {
		res.Matches = append(res.Matches, dump.Tree(n))
		if format == "text" {
			res.lines = append(res.lines, textLine(file, n))
		}
	}
	return res, nil
}

// textLine renders a match as "file: <TAG#id.class> text".
func textLine(file string, n *dom.Node) string {
	var b strings.Builder
	b.WriteString(file)
	b.WriteString(": <")
	b.WriteString(n.TagName())
	if id := n.ID(); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	for _, c := range strings.Fields(n.ClassName()) {
		b.WriteString(".")
		b.WriteString(c)
	}
	b.WriteString(">")
	if text := strings.Join(strings.Fields(n.TextContent()), " "); text != "" {
		b.WriteString(" ")
		b.WriteString(text)
	}
	return b.String()
}

func writeQueryResults(w io.Writer, results []queryResult, format string) error {
	if format == "json" {
		return dump.WriteJSON(w, results)
	}
	for _, r := range results {
		for _, line := range r.lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
