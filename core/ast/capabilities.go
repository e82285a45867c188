package ast

import "github.com/keymacro/keymacro/core/symbols"

// CapabilitySet is a (event type -> event codes) overapproximation of
// everything a tree might emit. It is keyed the same way Linux input
// events are: a type (EvKey, EvRel, ...) selecting a namespace of codes.
type CapabilitySet map[int]map[int]struct{}

func newCapabilitySet() CapabilitySet { return make(CapabilitySet) }

func (c CapabilitySet) add(evType, code int) {
	codes, ok := c[evType]
	if !ok {
		codes = make(map[int]struct{})
		c[evType] = codes
	}
	codes[code] = struct{}{}
}

// Codes returns the set of codes advertised under evType, or an empty
// (possibly nil) set if the tree never touches that event type.
func (c CapabilitySet) Codes(evType int) map[int]struct{} {
	return c[evType]
}

// Has reports whether (evType, code) is in the set.
func (c CapabilitySet) Has(evType, code int) bool {
	_, ok := c[evType][code]
	return ok
}

func (c CapabilitySet) union(other CapabilitySet) {
	for evType, codes := range other {
		for code := range codes {
			c.add(evType, code)
		}
	}
}

// Capabilities returns every (event type, code) pair n's tree could ever
// emit during some execution, resolving symbol names through table. The
// result is conservative by design (invariant: a superset, never an
// undercount) rather than exact, since a conditional branch (ifeq) may
// take either arm at runtime and both must be counted.
//
// mouse/wheel both advertise the full set of relative axes (RelX, RelY,
// RelWheel, RelHWheel) regardless of direction, since either op can move
// along either axis pair depending on the direction argument and the
// capability set must cover both without inspecting runtime values.
func (n *Node) Capabilities(table symbols.Table) CapabilitySet {
	caps := newCapabilitySet()
	n.collectCapabilities(table, caps)
	return caps
}

func (n *Node) collectCapabilities(table symbols.Table, caps CapabilitySet) {
	if n == nil {
		return
	}

	switch n.Op {
	case OpTap, OpModifier, OpHoldKey:
		if len(n.Values) > 0 {
			if code, ok := table.Resolve(n.Values[0].String()); ok {
				caps.add(EvKey, code)
			}
		}
	case OpMouse, OpWheel:
		caps.add(EvRel, RelX)
		caps.add(EvRel, RelY)
		caps.add(EvRel, RelWheel)
		caps.add(EvRel, RelHWheel)
	case OpEvent:
		if len(n.Values) >= 2 && n.Values[0].Kind == ValueInt && n.Values[1].Kind == ValueInt {
			caps.add(n.Values[0].Int, n.Values[1].Int)
		}
	}

	for _, child := range n.Children {
		child.collectCapabilities(table, caps)
	}
}
