package hierid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex matches one path segment, e.g. `u1` or `genblk[3]`.
var segmentRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_$]*)(?:\[(\d+)\])?$`)

// nameRegex matches a bare declaration or instance name, an unindexed
// segment of the address grammar.
var nameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// ValidName reports whether s can serve as a single unindexed path segment.
// Names outside this grammar would alias another address once serialized
// into the dotted form.
func ValidName(s string) bool {
	return nameRegex.MatchString(s)
}

// Parse reconstructs an Address from its canonical string form.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("hierarchical identifier cannot be empty")
	}

	var addr Address
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			return Address{}, fmt.Errorf("hierarchical identifier contains empty segment: %q", raw)
		}
		m := segmentRegex.FindStringSubmatch(part)
		if m == nil {
			return Address{}, fmt.Errorf("invalid path segment: %q", part)
		}
		seg := Segment{Name: m[1], Index: -1}
		if m[2] != "" {
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				// Unreachable given the regex.
				return Address{}, fmt.Errorf("parsing segment index: %w", err)
			}
			seg.Index = idx
		}
		addr.Segs = append(addr.Segs, seg)
	}
	return addr, nil
}

// MustParse is Parse for trusted inputs, panicking on malformed identifiers.
func MustParse(raw string) Address {
	addr, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return addr
}
