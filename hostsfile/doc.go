// Package hostsfile reads, merges and writes /etc/hosts style files.
//
// A file is loaded into a Table, where every address has a single Entry. The
// table is then changed with Add, Update, Append and Remove, and written back
// with a Writer, which leaves the file alone when nothing has changed:
//
//	table, err := hostsfile.LoadFile("/etc/hosts")
//	if err != nil {
//		return err
//	}
//
//	table.Append(hostsfile.Record{IP: ip, Hostname: "db1"}, false)
//	written, err := hostsfile.NewWriter("/etc/hosts").Save(table)
//
// Entries are written sorted by priority and then by hostname. A priority set
// explicitly is kept in the comment of the line as "@N", so that it survives
// the next run; other priorities are derived from the address.
package hostsfile
