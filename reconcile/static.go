package reconcile

import (
	"errors"
	"fmt"
	"net/netip"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maxpoletaev/hostsync/hostsfile"
)

var ErrInvalidStaticEntry = errors.New("invalid static entry")

// StaticEntry is an entry that must always be present in the hosts file and
// own its names exclusively. With Replace set, the names, comment and priority
// of an existing entry with the same address are replaced rather than merged.
type StaticEntry struct {
	Record  hostsfile.Record
	Replace bool
}

type staticEntryYAML struct {
	IP       string   `yaml:"ip"`
	Hostname string   `yaml:"hostname"`
	Aliases  []string `yaml:"aliases"`
	Comment  string   `yaml:"comment"`
	Priority *int     `yaml:"priority"`
	Replace  bool     `yaml:"replace"`
}

func (s *StaticEntry) UnmarshalYAML(value *yaml.Node) error {
	var raw staticEntryYAML
	if err := value.Decode(&raw); err != nil {
		return err
	}

	ip, err := netip.ParseAddr(raw.IP)
	if err != nil {
		return fmt.Errorf("%w at line %d: %v", ErrInvalidStaticEntry, value.Line, err)
	}

	if raw.Hostname == "" {
		return fmt.Errorf("%w at line %d: hostname is required", ErrInvalidStaticEntry, value.Line)
	}

	s.Record = hostsfile.Record{
		IP:       ip,
		Hostname: raw.Hostname,
		Aliases:  raw.Aliases,
		Comment:  raw.Comment,
	}

	if raw.Priority != nil {
		s.Record.Priority = hostsfile.Explicit(*raw.Priority)
	}

	if _, err := hostsfile.NewEntry(s.Record); err != nil {
		return fmt.Errorf("%w at line %d: %v", ErrInvalidStaticEntry, value.Line, err)
	}

	s.Replace = raw.Replace

	return nil
}

// ParseStatic parses a static entries manifest:
//
//	entries:
//	  - ip: 10.0.0.100
//	    hostname: gateway
//	    aliases: [gw]
//	    comment: edge router
//	    priority: 90
//	    replace: true
func ParseStatic(data []byte) ([]StaticEntry, error) {
	var manifest struct {
		Entries []StaticEntry `yaml:"entries"`
	}

	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	return manifest.Entries, nil
}

func LoadStatic(path string) ([]StaticEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	entries, err := ParseStatic(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return entries, nil
}

func applyStatic(table *hostsfile.Table, entries []StaticEntry) error {
	for _, s := range entries {
		var err error

		switch {
		case s.Replace && table.Contains(s.Record.IP):
			err = table.Update(s.Record, true)
		case s.Replace:
			err = table.Add(s.Record, true)
		default:
			err = table.Append(s.Record, true)
		}

		if err != nil {
			return fmt.Errorf("static entry %s: %w", s.Record.IP, err)
		}
	}

	return nil
}
