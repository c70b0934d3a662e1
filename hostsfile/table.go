package hostsfile

import (
	"net/netip"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/maxpoletaev/hostsync/internal/set"
)

// Table is the in-memory representation of a hosts file. It is not safe for
// concurrent use.
type Table struct {
	entries []*Entry
}

func NewTable() *Table {
	return &Table{}
}

// Len returns the number of entries, including the ones sharing an address.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns the entries in insertion order.
func (t *Table) Entries() []*Entry {
	entries := make([]*Entry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// IPAddresses returns the addresses of all entries in insertion order.
func (t *Table) IPAddresses() []netip.Addr {
	addrs := make([]netip.Addr, 0, len(t.entries))
	for _, e := range t.entries {
		addrs = append(addrs, e.ip)
	}

	return addrs
}

// Find returns the entry with the given address, or nil if there is none.
func (t *Table) Find(ip netip.Addr) *Entry {
	if i := t.index(ip); i >= 0 {
		return t.entries[i]
	}

	return nil
}

func (t *Table) Contains(ip netip.Addr) bool {
	return t.index(ip) >= 0
}

func (t *Table) index(ip netip.Addr) int {
	return slices.IndexFunc(t.entries, func(e *Entry) bool {
		return e.ip == ip
	})
}

// Add inserts a new entry without looking for an existing one with the same
// address. With unique set, the names of the new entry are taken away from
// all other entries.
func (t *Table) Add(r Record, unique bool) error {
	entry, err := NewEntry(r)
	if err != nil {
		return err
	}

	t.entries = append(t.entries, entry)

	if unique {
		t.entries = claim(t.entries, entry)
	}

	return nil
}

// Update replaces the names, comment and priority of an existing entry. It
// does nothing if there is no entry with the given address.
func (t *Table) Update(r Record, unique bool) error {
	entry := t.Find(r.IP)
	if entry == nil {
		return nil
	}

	if err := validateNames(r.Hostname, r.Aliases); err != nil {
		return err
	}

	entry.setNames(r.Hostname, r.Aliases)
	entry.comment = r.Comment
	entry.setPriority(r.Priority)

	if unique {
		t.entries = claim(t.entries, entry)
	}

	return nil
}

// Append merges the names and the comment of the record into an existing entry
// with the same address, or adds a new entry if there is none. Names already
// present keep their position, so the existing hostname stays the hostname.
// The priority of an existing entry is left untouched.
func (t *Table) Append(r Record, unique bool) error {
	entry := t.Find(r.IP)
	if entry == nil {
		return t.Add(r, unique)
	}

	if err := validateNames(r.Hostname, r.Aliases); err != nil {
		return err
	}

	names := set.NewOrdered[string]()
	for _, name := range append(entry.Names(), r.Hostname) {
		names.Add(name)
	}

	for _, name := range r.Aliases {
		if name != "" {
			names.Add(name)
		}
	}

	merged := names.Values()
	entry.setNames(merged[0], merged[1:])
	entry.comment = mergeComments(entry.comment, r.Comment)

	if unique {
		t.entries = claim(t.entries, entry)
	}

	return nil
}

// Remove deletes the entry with the given address, if any.
func (t *Table) Remove(ip netip.Addr) {
	if i := t.index(ip); i >= 0 {
		t.entries = slices.Delete(t.entries, i, i+1)
	}
}

// UniqueEntries returns one entry per address (the last one added wins) sorted
// by priority, highest first, and then by hostname.
func (t *Table) UniqueEntries() []*Entry {
	index := make(map[netip.Addr]int, len(t.entries))
	unique := make([]*Entry, 0, len(t.entries))

	for _, e := range t.entries {
		if i, ok := index[e.ip]; ok {
			unique[i] = e
			continue
		}

		index[e.ip] = len(unique)
		unique = append(unique, e)
	}

	slices.SortStableFunc(unique, func(a, b *Entry) bool {
		if a.priority.Value() != b.priority.Value() {
			return a.priority.Value() > b.priority.Value()
		}

		return a.hostname < b.hostname
	})

	return unique
}

// mergeComments keeps the existing comment if it already contains the new one,
// otherwise both are joined with a comma.
func mergeComments(existing, incoming string) string {
	if existing != "" && incoming != "" && strings.Contains(existing, incoming) {
		return existing
	}

	parts := set.NewOrdered[string]()
	for _, c := range []string{existing, incoming} {
		if c != "" {
			parts.Add(c)
		}
	}

	return strings.Join(parts.Values(), ", ")
}
