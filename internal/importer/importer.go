// internal/importer/importer.go

// Package importer builds dom trees from markup parsed by third-party
// parsers. Every node is created and linked through the public dom factory
// and insertion API, exactly as any other embedder would.
package importer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/domkit/internal/dom"
)

// Stats reports what an import produced and what it had to drop.
type Stats struct {
	Elements int
	Texts    int
	Comments int
	Other    int
	// Skipped counts elements or attributes whose names the DOM rejects. An
	// element that is skipped still contributes its children to its parent.
	Skipped int
}

type builder struct {
	doc    *dom.Document
	logger *zap.Logger
	stats  Stats
}

func newBuilder(doc *dom.Document) *builder {
	return &builder{doc: doc, logger: doc.Logger().Named("importer")}
}

// link appends child to parent and hands the creation reference to the tree.
func (b *builder) link(parent, child *dom.Node) error {
	_, err := parent.AppendChild(child)
	child.Release()
	if err != nil {
		return fmt.Errorf("appending %s to %s: %w", child, parent, err)
	}
	return nil
}

func (b *builder) skip(what, name string, err error) {
	b.stats.Skipped++
	b.logger.Debug("skipping unrepresentable markup",
		zap.String("kind", what),
		zap.String("name", name),
		zap.Error(err))
}

func (b *builder) text(parent *dom.Node, data string) error {
	if parent.NodeType() == dom.DocumentNode {
		// Character data is not allowed at the top level; parsers emit
		// whitespace there.
		return nil
	}
	b.stats.Texts++
	return b.link(parent, b.doc.CreateTextNode(data))
}

func (b *builder) comment(parent *dom.Node, data string) error {
	b.stats.Comments++
	return b.link(parent, b.doc.CreateComment(data))
}
