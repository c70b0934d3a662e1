package membership

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var ErrMalformedRecord = errors.New("malformed member record")

type Member struct {
	// Name is the node name, which becomes its hostname.
	Name string
	// Addr is the address the node is reachable at.
	Addr string
	// Role is an arbitrary tag of the node. Carried along but not used.
	Role string
}

// IP parses the address of the member.
func (m Member) IP() (netip.Addr, error) {
	ip, err := netip.ParseAddr(m.Addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("member %q: %w", m.Name, err)
	}

	return ip, nil
}

func (m Member) String() string {
	return strings.TrimSpace(m.Name + " " + m.Addr + " " + m.Role)
}

// ParseMember parses a "name address [role]" record.
func ParseMember(line string) (Member, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Member{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	m := Member{
		Name: fields[0],
		Addr: fields[1],
	}

	if len(fields) > 2 {
		m.Role = fields[2]
	}

	return m, nil
}
