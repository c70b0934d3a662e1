package hostsfile

import (
	"github.com/maxpoletaev/hostsync/internal/set"
)

// claim gives the owner exclusive use of its names. Every other entry loses
// the names it shares with the owner; entries left without a name are dropped.
// Entries are told apart by address: other entries with the owner's address
// are superseded by it and dropped too. The owner is moved to the end, so that
// it is the last one seen for its address.
func claim(entries []*Entry, owner *Entry) []*Entry {
	names := set.New(owner.Names()...)
	claimed := make([]*Entry, 0, len(entries))

	for _, e := range entries {
		if e.ip == owner.ip {
			continue
		}

		if stripped := e.without(names); stripped != nil {
			claimed = append(claimed, stripped)
		}
	}

	return append(claimed, owner)
}

// without returns the entry with the given names removed. If the hostname is
// removed, the first remaining alias becomes the hostname. Returns nil when no
// names are left.
func (e *Entry) without(names set.Set[string]) *Entry {
	hostname := e.hostname
	if names.Has(hostname) {
		hostname = ""
	}

	aliases := make([]string, 0, len(e.aliases))
	for _, alias := range e.aliases {
		if !names.Has(alias) {
			aliases = append(aliases, alias)
		}
	}

	if hostname == e.hostname && len(aliases) == len(e.aliases) {
		return e
	}

	e.hostname = hostname
	e.aliases = aliases

	if e.hostname == "" && !e.promoteAlias() {
		return nil
	}

	return e
}

// promoteAlias makes the first alias the hostname of an entry that has lost
// its hostname. It reports false if there is no alias to promote.
func (e *Entry) promoteAlias() bool {
	if len(e.aliases) == 0 {
		return false
	}

	e.hostname, e.aliases = e.aliases[0], e.aliases[1:]

	return true
}
