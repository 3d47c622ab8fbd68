// Package hierid models fully-qualified hierarchical instance identifiers.
// An address is an ordered path of segments, e.g. `top.genblk[2].adder`;
// indexed segments come from unrolled generate loops. Addresses key the
// elaborated-instance container and every per-instance cache.
package hierid

import (
	"fmt"
	"strings"
)

// Segment is one component of an address path. Index is -1 when the segment
// carries no index.
type Segment struct {
	Name  string
	Index int
}

// Address is the structured form of a hierarchical identifier. The zero
// value is the empty (root-less) address.
type Address struct {
	Segs []Segment
}

// Root returns a single-segment address naming a top-level instance.
func Root(name string) Address {
	return Address{Segs: []Segment{{Name: name, Index: -1}}}
}

// Empty reports whether the address has no segments.
func (a Address) Empty() bool {
	return len(a.Segs) == 0
}

// Child returns a copy of the address extended by an unindexed segment.
func (a Address) Child(name string) Address {
	return a.child(Segment{Name: name, Index: -1})
}

// ChildIndexed returns a copy of the address extended by an indexed segment,
// as produced by generate-loop unrolling.
func (a Address) ChildIndexed(name string, index int) Address {
	return a.child(Segment{Name: name, Index: index})
}

func (a Address) child(seg Segment) Address {
	segs := make([]Segment, len(a.Segs), len(a.Segs)+1)
	copy(segs, a.Segs)
	return Address{Segs: append(segs, seg)}
}

// Join returns the address extended by every segment of rel.
func (a Address) Join(rel Address) Address {
	segs := make([]Segment, 0, len(a.Segs)+len(rel.Segs))
	segs = append(segs, a.Segs...)
	segs = append(segs, rel.Segs...)
	return Address{Segs: segs}
}

// String serializes the address into its canonical dotted form.
func (a Address) String() string {
	var sb strings.Builder
	for i, seg := range a.Segs {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg.Name)
		if seg.Index >= 0 {
			fmt.Fprintf(&sb, "[%d]", seg.Index)
		}
	}
	return sb.String()
}

// Equal checks for segment-wise equality.
func (a Address) Equal(other Address) bool {
	if len(a.Segs) != len(other.Segs) {
		return false
	}
	for i, seg := range a.Segs {
		if seg != other.Segs[i] {
			return false
		}
	}
	return true
}
