// internal/dump/records.go
package dump

import "github.com/xkilldash9x/domkit/internal/dom"

// RecordJSON is the JSON shape of a mutation record. Nodes are rendered as
// short labels; records do not own a serialized copy of the tree.
type RecordJSON struct {
	Type               string   `json:"type"`
	Target             string   `json:"target"`
	AddedNodes         []string `json:"addedNodes,omitempty"`
	RemovedNodes       []string `json:"removedNodes,omitempty"`
	PreviousSibling    string   `json:"previousSibling,omitempty"`
	NextSibling        string   `json:"nextSibling,omitempty"`
	AttributeName      string   `json:"attributeName,omitempty"`
	AttributeNamespace string   `json:"attributeNamespace,omitempty"`
	OldValue           *string  `json:"oldValue,omitempty"`
}

// Records converts records without releasing them.
func Records(records []*dom.MutationRecord) []RecordJSON {
	out := make([]RecordJSON, 0, len(records))
	for _, r := range records {
		rec := RecordJSON{
			Type:               string(r.Type),
			Target:             label(r.Target),
			AddedNodes:         labels(r.AddedNodes),
			RemovedNodes:       labels(r.RemovedNodes),
			PreviousSibling:    label(r.PreviousSibling),
			NextSibling:        label(r.NextSibling),
			AttributeName:      r.AttributeName,
			AttributeNamespace: r.AttributeNamespace,
		}
		if r.HasOldValue {
			old := r.OldValue
			rec.OldValue = &old
		}
		out = append(out, rec)
	}
	return out
}

func label(n *dom.Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func labels(nodes []*dom.Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = label(n)
	}
	return out
}
