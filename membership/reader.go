package membership

import (
	"bufio"
	"io"
	"strings"

	"github.com/maxpoletaev/hostsync/internal/multierror"
)

// ReadMembers reads member records, one per line. Blank lines are skipped.
// Malformed lines do not stop the reading: the members parsed so far are
// returned along with a *multierror.Error keyed by line number.
func ReadMembers(r io.Reader) ([]Member, error) {
	var members []Member

	errs := multierror.New[int]()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		m, err := ParseMember(line)
		if err != nil {
			errs.Add(lineNum, err)
			continue
		}

		members = append(members, m)
	}

	if err := scanner.Err(); err != nil {
		return members, err
	}

	return members, errs.Combined()
}
