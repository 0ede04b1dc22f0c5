// -- cmd/load.go --
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domkit/internal/config"
	"github.com/xkilldash9x/domkit/internal/dom"
	"github.com/xkilldash9x/domkit/internal/importer"
	"github.com/xkilldash9x/domkit/internal/observability"
)

// stdin is read when a file argument is "-". Tests replace it.
var stdin io.Reader = os.Stdin

// markupKind picks the parser for a file from its extension.
type markupKind int

const (
	markupHTML markupKind = iota
	markupXML
)

func kindOf(path string) markupKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".svg", ".xhtml", ".xsl", ".rss", ".atom":
		return markupXML
	default:
		return markupHTML
	}
}

// readInput reads at most limit bytes from path, failing when the input is
// larger.
func readInput(path string, limit int64) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds query.max_input_bytes (%d)", path, limit)
	}
	return data, nil
}

// loadDocument parses one file into a fresh Document. The caller owns the
// returned document and must Release it.
func loadDocument(cfg config.Interface, path string) (*dom.Document, error) {
	logger := observability.Named("dom").With(zap.String("file", path))
	data, err := readInput(path, cfg.Query().MaxInputBytes)
	if err != nil {
		return nil, err
	}

	kind := kindOf(path)
	doc := dom.NewDocument(dom.Options{
		HTML:              kind == markupHTML && cfg.Engine().HTMLDocuments,
		SelectorCacheSize: cfg.Engine().SelectorCacheSize,
		Logger:            logger,
	})

	var stats importer.Stats
	if kind == markupXML {
		stats, err = importer.FromXML(doc, bytes.NewReader(data))
	} else {
		stats, err = importer.FromHTML(doc, bytes.NewReader(data))
	}
	if err != nil {
		doc.Release()
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	logger.Debug("Loaded document",
		zap.Int("bytes", len(data)),
		zap.Int("elements", stats.Elements),
		zap.Int("texts", stats.Texts),
		zap.Int("live_nodes", doc.LiveNodes()),
	)
	if stats.Skipped > 0 {
		logger.Warn("Dropped nodes or attributes with invalid names", zap.Int("skipped", stats.Skipped))
	}
	return doc, nil
}
