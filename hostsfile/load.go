package hostsfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Load reads a hosts file into a table. Lines repeating an address are merged
// into a single entry. Only explicit priorities are carried over, the rest are
// calculated again. Any malformed line fails the whole load, since writing the
// table back would silently drop that line.
func Load(r io.Reader) (*Table, error) {
	table := NewTable()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		entry, err := Parse(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		if entry == nil {
			continue
		}

		record := Record{
			IP:       entry.ip,
			Hostname: entry.hostname,
			Aliases:  entry.aliases,
			Comment:  entry.comment,
		}

		if entry.priority.IsExplicit() {
			record.Priority = entry.priority
		}

		if err := table.Append(record, false); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

// LoadFile loads the hosts file at path. A missing file loads as an empty table.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTable(), nil
		}

		return nil, err
	}

	defer f.Close()

	table, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return table, nil
}
