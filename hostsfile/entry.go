package hostsfile

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/maxpoletaev/hostsync/internal/set"
)

var (
	ErrInvalidEntry   = errors.New("ip address and hostname are both required")
	ErrInvalidAddress = errors.New("invalid ip address")
)

// Record is the input shape of the table operations.
type Record struct {
	IP       netip.Addr
	Hostname string
	Aliases  []string
	Comment  string
	// Priority is calculated from the address when left unset.
	Priority Priority
}

// Entry is a single line of a hosts file:
//
//	1.2.3.4	hostname [alias...]	[# comment [@priority]]
//
// An entry with an empty hostname has lost its primary name to another entry
// and is waiting for one of its aliases to be promoted (see claim).
type Entry struct {
	ip       netip.Addr
	hostname string
	aliases  []string
	comment  string
	priority Priority
}

// NewEntry creates an entry from the record. Both the address and the
// hostname are required.
func NewEntry(r Record) (*Entry, error) {
	if !r.IP.IsValid() {
		return nil, ErrInvalidEntry
	}

	if err := validateNames(r.Hostname, r.Aliases); err != nil {
		return nil, err
	}

	e := &Entry{ip: r.IP}
	e.setNames(r.Hostname, r.Aliases)
	e.comment = r.Comment
	e.setPriority(r.Priority)

	return e, nil
}

func (e *Entry) IP() netip.Addr {
	return e.ip
}

func (e *Entry) Hostname() string {
	return e.hostname
}

func (e *Entry) Aliases() []string {
	aliases := make([]string, len(e.aliases))
	copy(aliases, e.aliases)
	return aliases
}

// Names returns the hostname followed by the aliases.
func (e *Entry) Names() []string {
	names := make([]string, 0, len(e.aliases)+1)
	if e.hostname != "" {
		names = append(names, e.hostname)
	}

	return append(names, e.aliases...)
}

func (e *Entry) Comment() string {
	return e.comment
}

func (e *Entry) Priority() Priority {
	return e.priority
}

// SetPriority assigns an explicit priority, which will be written out with
// the entry from now on.
func (e *Entry) SetPriority(n int) {
	e.priority = Explicit(n)
}

func (e *Entry) setPriority(p Priority) {
	if !p.IsSet() {
		p = Calculated(e.ip)
	}

	e.priority = p
}

// validateNames checks that the names can be written to a hosts file and read
// back unchanged: the hostname is required and no name may contain whitespace,
// "#" or "@".
func validateNames(hostname string, aliases []string) error {
	if hostname == "" {
		return ErrInvalidEntry
	}

	for _, name := range append([]string{hostname}, aliases...) {
		if strings.ContainsAny(name, "#@ \t\r\n\v\f") {
			return fmt.Errorf("%w: invalid name %q", ErrInvalidEntry, name)
		}
	}

	return nil
}

// setNames replaces the names of the entry. Empty and duplicate aliases as
// well as the aliases repeating the hostname are dropped.
func (e *Entry) setNames(hostname string, aliases []string) {
	seen := set.NewOrdered[string]()
	if hostname != "" {
		seen.Add(hostname)
	}

	clean := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if alias != "" && seen.Add(alias) {
			clean = append(clean, alias)
		}
	}

	e.hostname = hostname
	e.aliases = clean
}

// Line formats the entry as a hosts file line.
func (e *Entry) Line() string {
	fields := []string{e.ip.String(), strings.Join(e.Names(), " ")}

	comment := strings.TrimSpace("# " + e.comment)
	if e.priority.IsExplicit() {
		comment = fmt.Sprintf("%s @%d", comment, e.priority.Value())
	}

	if comment != "#" {
		fields = append(fields, comment)
	}

	return strings.TrimSpace(strings.Join(fields, "\t"))
}

func (e *Entry) String() string {
	return e.Line()
}

// Parse parses a single hosts file line. Lines that carry no entry (blank or
// comment-only lines) yield nil without an error.
func Parse(line string) (*Entry, error) {
	data, comment, _ := strings.Cut(line, "#")
	comment = strings.TrimSpace(comment)

	var priority Priority

	// The marker is the last "@" of the comment, the text before it may
	// contain "@" of its own.
	if i := strings.LastIndex(comment, "@"); i >= 0 {
		if p, ok := parsePriority(strings.TrimSpace(comment[i+1:])); ok {
			comment = strings.TrimSpace(comment[:i])
			priority = p
		}
	}

	fields := strings.Fields(data)
	if len(fields) == 0 {
		return nil, nil
	}

	ip, err := netip.ParseAddr(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidAddress, fields[0])
	}

	var hostname string
	if len(fields) > 1 {
		hostname = fields[1]
	}

	var aliases []string
	if len(fields) > 2 {
		aliases = fields[2:]
	}

	return NewEntry(Record{
		IP:       ip,
		Hostname: hostname,
		Aliases:  aliases,
		Comment:  comment,
		Priority: priority,
	})
}
