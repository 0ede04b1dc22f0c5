// internal/selector/specificity.go
package selector

// Specificity is the (ids, classes, types) triple of a selector. It is
// computed for callers that need it; query results are never ranked by it.
type Specificity struct {
	IDs     int
	Classes int // classes, attribute selectors and pseudo-classes
	Types   int
}

// Add returns the component-wise sum.
func (s Specificity) Add(o Specificity) Specificity {
	return Specificity{IDs: s.IDs + o.IDs, Classes: s.Classes + o.Classes, Types: s.Types + o.Types}
}

// Less compares lexicographically.
func (s Specificity) Less(o Specificity) bool {
	if s.IDs != o.IDs {
		return s.IDs < o.IDs
	}
	if s.Classes != o.Classes {
		return s.Classes < o.Classes
	}
	return s.Types < o.Types
}

// CalculateSpecificity sums the specificity of every compound in the chain.
func (cs ComplexSelector) CalculateSpecificity() Specificity {
	var total Specificity
	for _, s := range cs.Selectors {
		total = total.Add(s.Compound.CalculateSpecificity())
	}
	return total
}

// CalculateSpecificity calculates for a compound selector.
func (c CompoundSelector) CalculateSpecificity() Specificity {
	s := Specificity{
		IDs:     len(c.IDs),
		Classes: len(c.Classes) + len(c.Attributes),
	}
	if c.TagName != "" && c.TagName != "*" {
		s.Types = 1
	}
	for _, pc := range c.PseudoClasses {
		switch pc.Kind {
		case PseudoWhere:
			// Contributes nothing.
		case PseudoIs, PseudoNot:
			s = s.Add(pc.Args.MaxSpecificity())
		default:
			s.Classes++
		}
	}
	return s
}

// MaxSpecificity returns the largest specificity among the group's members.
func (g SelectorGroup) MaxSpecificity() Specificity {
	var best Specificity
	for _, cs := range g {
		if sp := cs.CalculateSpecificity(); best.Less(sp) {
			best = sp
		}
	}
	return best
}
