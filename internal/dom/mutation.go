// internal/dom/mutation.go
package dom

import (
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MutationType names the kind of change a MutationRecord describes.
type MutationType string

const (
	MutationAttributes    MutationType = "attributes"
	MutationCharacterData MutationType = "characterData"
	MutationChildList     MutationType = "childList"
)

// MutationRecord describes one observed change. A record holds a reference
// to every node it names; Release drops them.
type MutationRecord struct {
	Type               MutationType
	Target             *Node
	AddedNodes         []*Node
	RemovedNodes       []*Node
	PreviousSibling    *Node
	NextSibling        *Node
	AttributeName      string
	AttributeNamespace string
	OldValue           string
	// HasOldValue distinguishes an empty old value from an absent one.
	HasOldValue bool

	released bool
}

// Release drops the record's node references. It is safe to call twice.
func (r *MutationRecord) Release() {
	if r.released {
		return
	}
	r.released = true
	release := func(n *Node) {
		if n != nil {
			n.Release()
		}
	}
	release(r.Target)
	for _, n := range r.AddedNodes {
		n.Release()
	}
	for _, n := range r.RemovedNodes {
		n.Release()
	}
	release(r.PreviousSibling)
	release(r.NextSibling)
}

// ReleaseRecords releases every record in records.
func ReleaseRecords(records []*MutationRecord) {
	for _, r := range records {
		r.Release()
	}
}

// MutationObserverInit holds the options of one Observe call. The pointer
// fields are tri-state: nil means the caller left the option out.
type MutationObserverInit struct {
	ChildList             bool
	Attributes            *bool
	CharacterData         *bool
	Subtree               bool
	AttributeOldValue     *bool
	CharacterDataOldValue *bool
	// AttributeFilter restricts attribute records to these local names.
	// A non-nil empty filter accepts nothing.
	AttributeFilter []string
}

// Bool returns a pointer to b, for MutationObserverInit literals.
func Bool(b bool) *bool { return &b }

// observeOptions is MutationObserverInit after defaults are applied.
type observeOptions struct {
	childList             bool
	attributes            bool
	characterData         bool
	subtree               bool
	attributeOldValue     bool
	characterDataOldValue bool
	filter                []string
	hasFilter             bool
}

func resolveInit(init MutationObserverInit) (observeOptions, error) {
	const op = "observe"
	get := func(p *bool) bool { return p != nil && *p }
	attributes := init.Attributes
	if attributes == nil && (init.AttributeOldValue != nil || init.AttributeFilter != nil) {
		attributes = Bool(true)
	}
	characterData := init.CharacterData
	if characterData == nil && init.CharacterDataOldValue != nil {
		characterData = Bool(true)
	}
	opts := observeOptions{
		childList:             init.ChildList,
		attributes:            get(attributes),
		characterData:         get(characterData),
		subtree:               init.Subtree,
		attributeOldValue:     get(init.AttributeOldValue),
		characterDataOldValue: get(init.CharacterDataOldValue),
		filter:                slices.Clone(init.AttributeFilter),
		hasFilter:             init.AttributeFilter != nil,
	}
	switch {
	case !opts.childList && !opts.attributes && !opts.characterData:
		return opts, newError(InvalidState, op, "one of childList, attributes or characterData must be true")
	case opts.attributeOldValue && !opts.attributes:
		return opts, newError(InvalidState, op, "attributeOldValue requires attributes")
	case opts.hasFilter && !opts.attributes:
		return opts, newError(InvalidState, op, "attributeFilter requires attributes")
	case opts.characterDataOldValue && !opts.characterData:
		return opts, newError(InvalidState, op, "characterDataOldValue requires characterData")
	}
	return opts, nil
}

// registration ties an observer to one target node. Registrations do not
// keep their target alive.
type registration struct {
	observer *MutationObserver
	target   *Node
	opts     observeOptions
}

// MutationCallback receives delivered records. The records are released when
// the callback returns; Acquire any node that must outlive it.
type MutationCallback func(records []*MutationRecord, observer *MutationObserver)

// MutationObserver queues records for the targets it observes.
type MutationObserver struct {
	id       uuid.UUID
	doc      *Document
	callback MutationCallback
	targets  []*Node
	records  []*MutationRecord
	pending  bool
}

// NewMutationObserver creates a disconnected observer. callback may be nil
// when records are only ever drained with TakeRecords.
func (d *Document) NewMutationObserver(callback MutationCallback) *MutationObserver {
	return &MutationObserver{id: uuid.New(), doc: d, callback: callback}
}

// ID returns the observer's unique id.
func (o *MutationObserver) ID() string { return o.id.String() }

// Observe registers target with init, replacing any earlier options this
// observer had for the same target.
func (o *MutationObserver) Observe(target *Node, init MutationObserverInit) error {
	opts, err := resolveInit(init)
	if err != nil {
		return err
	}
	if target.doc != o.doc {
		return newError(WrongDocument, "observe", "target belongs to another document")
	}
	d := o.doc
	for _, r := range d.observers[target] {
		if r.observer == o {
			r.opts = opts
			return nil
		}
	}
	d.observers[target] = append(d.observers[target], &registration{observer: o, target: target, opts: opts})
	o.targets = append(o.targets, target)
	d.logger.Debug("observer registered",
		zap.String("observer", o.ID()),
		zap.Stringer("target", target),
		zap.Bool("subtree", opts.subtree))
	return nil
}

// Disconnect drops every registration and discards queued records.
func (o *MutationObserver) Disconnect() {
	d := o.doc
	for _, t := range o.targets {
		regs := d.observers[t]
		regs = slices.DeleteFunc(regs, func(r *registration) bool { return r.observer == o })
		if len(regs) == 0 {
			delete(d.observers, t)
		} else {
			d.observers[t] = regs
		}
	}
	o.targets = nil
	ReleaseRecords(o.records)
	o.records = nil
	d.logger.Debug("observer disconnected", zap.String("observer", o.ID()))
}

// TakeRecords returns and empties the queue. The caller owns the returned
// records and should Release them.
func (o *MutationObserver) TakeRecords() []*MutationRecord {
	records := o.records
	o.records = nil
	return records
}

// Pending returns the number of queued records.
func (o *MutationObserver) Pending() int { return len(o.records) }

func (o *MutationObserver) forgetTarget(n *Node) {
	o.targets = slices.DeleteFunc(o.targets, func(t *Node) bool { return t == n })
}

// NotifyObservers delivers queued records to each observer's callback, in
// the order observers first queued a record. The host decides when to call it.
func (d *Document) NotifyObservers() {
	for len(d.pending) > 0 {
		observers := d.pending
		d.pending = nil
		for _, o := range observers {
			o.pending = false
			records := o.TakeRecords()
			if len(records) == 0 {
				continue
			}
			if o.callback != nil {
				o.callback(records, o)
			}
			ReleaseRecords(records)
		}
	}
}

type interest struct {
	observer *MutationObserver
	withOld  bool
}

// interestedObservers walks the inclusive ancestors of target and collects
// each observer whose registration accepts the change, once.
func (d *Document) interestedObservers(target *Node, typ MutationType, name, ns Atom) []interest {
	var out []interest
	for n := target; n != nil; n = n.parent {
		for _, r := range d.observers[n] {
			opts := &r.opts
			if n != target && !opts.subtree {
				continue
			}
			withOld := false
			switch typ {
			case MutationAttributes:
				if !opts.attributes {
					continue
				}
				if opts.hasFilter && (!ns.IsZero() || !slices.Contains(opts.filter, name.String())) {
					continue
				}
				withOld = opts.attributeOldValue
			case MutationCharacterData:
				if !opts.characterData {
					continue
				}
				withOld = opts.characterDataOldValue
			case MutationChildList:
				if !opts.childList {
					continue
				}
			}
			i := slices.IndexFunc(out, func(x interest) bool { return x.observer == r.observer })
			if i < 0 {
				out = append(out, interest{observer: r.observer, withOld: withOld})
			} else if withOld {
				out[i].withOld = true
			}
		}
	}
	return out
}

func (d *Document) enqueue(o *MutationObserver, rec *MutationRecord) {
	o.records = append(o.records, rec)
	if !o.pending {
		o.pending = true
		d.pending = append(d.pending, o)
	}
}

func acquireAll(nodes []*Node) []*Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Acquire()
	}
	return out
}

func acquireOpt(n *Node) *Node {
	if n == nil {
		return nil
	}
	return n.Acquire()
}

// queueAttributes records an attribute change on target. A zero old atom
// means the attribute did not exist before.
func (d *Document) queueAttributes(target *Node, local, ns, old Atom) {
	if len(d.observers) == 0 {
		return
	}
	for _, in := range d.interestedObservers(target, MutationAttributes, local, ns) {
		rec := &MutationRecord{
			Type:               MutationAttributes,
			Target:             target.Acquire(),
			AttributeName:      local.String(),
			AttributeNamespace: ns.String(),
		}
		if in.withOld && !old.IsZero() {
			rec.OldValue, rec.HasOldValue = old.String(), true
		}
		d.enqueue(in.observer, rec)
	}
}

// queueCharacterData records a data change on target.
func (d *Document) queueCharacterData(target *Node, old string) {
	if len(d.observers) == 0 {
		return
	}
	for _, in := range d.interestedObservers(target, MutationCharacterData, Atom{}, Atom{}) {
		rec := &MutationRecord{Type: MutationCharacterData, Target: target.Acquire()}
		if in.withOld {
			rec.OldValue, rec.HasOldValue = old, true
		}
		d.enqueue(in.observer, rec)
	}
}

// queueChildList records nodes added to or removed from target between prev and next.
func (d *Document) queueChildList(target *Node, added, removed []*Node, prev, next *Node) {
	if len(d.observers) == 0 || (len(added) == 0 && len(removed) == 0) {
		return
	}
	for _, in := range d.interestedObservers(target, MutationChildList, Atom{}, Atom{}) {
		d.enqueue(in.observer, &MutationRecord{
			Type:            MutationChildList,
			Target:          target.Acquire(),
			AddedNodes:      acquireAll(added),
			RemovedNodes:    acquireAll(removed),
			PreviousSibling: acquireOpt(prev),
			NextSibling:     acquireOpt(next),
		})
	}
}
