package hostsfile

import (
	"net/netip"
	"strconv"
)

type priorityKind uint8

const (
	priorityUnset priorityKind = iota
	priorityExplicit
	priorityCalculated
)

// Priority is the relative weight of an entry in the output. It is either set
// explicitly (and then persisted in the comment as "@N") or calculated from the
// address class. The zero value means "not set" and is only meaningful on input
// records, where it asks for the priority to be calculated.
type Priority struct {
	kind  priorityKind
	value int
}

// Explicit returns a priority that is persisted in the file. Negative values
// are clamped to zero.
func Explicit(n int) Priority {
	if n < 0 {
		n = 0
	}

	return Priority{kind: priorityExplicit, value: n}
}

// Calculated returns the priority derived from the address class.
func Calculated(ip netip.Addr) Priority {
	return Priority{kind: priorityCalculated, value: CalculatedPriority(ip)}
}

// Value returns the numeric weight. Zero for an unset priority.
func (p Priority) Value() int {
	return p.value
}

// IsSet reports whether the priority is either explicit or calculated.
func (p Priority) IsSet() bool {
	return p.kind != priorityUnset
}

// IsExplicit reports whether the priority is written out as an "@N" marker.
func (p Priority) IsExplicit() bool {
	return p.kind == priorityExplicit
}

// IsCalculated reports whether the priority was derived from the address.
func (p Priority) IsCalculated() bool {
	return p.kind == priorityCalculated
}

func (p Priority) String() string {
	switch p.kind {
	case priorityExplicit:
		return "@" + strconv.Itoa(p.value)
	case priorityCalculated:
		return strconv.Itoa(p.value)
	default:
		return ""
	}
}

var loopback = netip.MustParsePrefix("127.0.0.0/8")

var localhost = netip.AddrFrom4([4]byte{127, 0, 0, 1})

// CalculatedPriority derives the priority of an address that was not given an
// explicit one: localhost first, then the rest of the loopback range, then IPv4
// and finally IPv6. IPv4-mapped IPv6 addresses count as IPv6.
func CalculatedPriority(ip netip.Addr) int {
	switch {
	case ip == localhost:
		return 81
	case loopback.Contains(ip):
		return 80
	case ip.Is4():
		return 60
	case ip.Is6():
		return 20
	default:
		return 0
	}
}

// parsePriority parses the text after the "@" marker.
func parsePriority(s string) (Priority, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Priority{}, false
	}

	return Explicit(n), true
}
