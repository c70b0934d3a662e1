package hostsfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/twmb/murmur3"
)

var banner = []string{
	"#",
	"# This file is managed by hostsync.",
	"# Editing this file by hand is highly discouraged!",
	"#",
	"# Comments containing an @ sign should not be modified or else",
	"# hostsync will be unable to guarantee relative priority in",
	"# future runs!",
	"#",
}

type digest struct {
	h1, h2 uint64
}

func digestOf(data []byte) digest {
	h1, h2 := murmur3.Sum128(data)
	return digest{h1: h1, h2: h2}
}

// Render returns the file contents for the table: the banner, a blank line,
// one line per unique entry and a trailing blank line.
func Render(t *Table) []byte {
	var buf bytes.Buffer

	for _, line := range banner {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')

	for _, e := range t.UniqueEntries() {
		buf.WriteString(e.Line())
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

type WriterOption func(*Writer)

// WithInPlace makes the writer overwrite the file in place instead of renaming
// a temporary file over it. Needed for files that are bind-mounted, such as
// /etc/hosts inside a container.
func WithInPlace() WriterOption {
	return func(w *Writer) {
		w.inPlace = true
	}
}

func WithLogger(logger log.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// Writer saves a table to a file only if the contents have changed. The digest
// of the file on disk is read once and then kept in sync with what the writer
// has written, so the writer assumes nobody else modifies the file meanwhile.
type Writer struct {
	path    string
	inPlace bool
	logger  log.Logger
	current *digest
}

func NewWriter(path string, opts ...WriterOption) *Writer {
	w := &Writer{
		path:   path,
		logger: log.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

func (w *Writer) Path() string {
	return w.path
}

// Save writes the table unless the file already has the same contents. It
// reports whether the file was written.
func (w *Writer) Save(t *Table) (bool, error) {
	contents := Render(t)
	sum := digestOf(contents)

	current, err := w.currentDigest()
	if err != nil {
		return false, err
	}

	if current != nil && *current == sum {
		level.Debug(w.logger).Log("msg", "hosts file is up to date", "path", w.path)
		return false, nil
	}

	if w.inPlace {
		err = w.writeInPlace(contents)
	} else {
		err = w.writeAtomic(contents)
	}

	if err != nil {
		return false, fmt.Errorf("failed to write %s: %w", w.path, err)
	}

	w.current = &sum

	level.Info(w.logger).Log("msg", "hosts file updated", "path", w.path, "entries", len(t.UniqueEntries()))

	return true, nil
}

func (w *Writer) currentDigest() (*digest, error) {
	if w.current != nil {
		return w.current, nil
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	sum := digestOf(data)
	w.current = &sum

	return w.current, nil
}

func (w *Writer) fileMode() fs.FileMode {
	if fi, err := os.Stat(w.path); err == nil {
		return fi.Mode().Perm()
	}

	return 0o644
}

func (w *Writer) writeInPlace(contents []byte) error {
	return os.WriteFile(w.path, contents, w.fileMode())
}

func (w *Writer) writeAtomic(contents []byte) (err error) {
	mode := w.fileMode()

	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(contents); err != nil {
		return err
	}

	if err = tmp.Sync(); err != nil {
		return err
	}

	if err = tmp.Chmod(mode); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), w.path)
}
