package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrMalformed is wrapped by IOError when an existing inventory file cannot
// be read as a table with the expected header.
var ErrMalformed = errors.New("malformed inventory file")

// IOError reports a failed read, parse or write of an inventory file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s inventory %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Outcome tells whether Upsert added a row or replaced one.
type Outcome int

const (
	Inserted Outcome = iota + 1
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Upsert merges rec into the inventory file at path, keyed by computer name.
//
// A missing or empty file is created with the header and a single row. In an
// existing file the row whose Computer Name equals rec.ComputerName exactly is
// overwritten in place; otherwise rec is appended. The whole file is rewritten
// through a temporary file, so on any error the file on disk is unchanged.
//
// Upsert assumes a single writer per path. Concurrent callers must serialize
// access themselves.
func Upsert(path string, rec Record) (Outcome, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	rows, mode, err := readRows(path)
	if err != nil {
		return 0, err
	}

	outcome := Inserted
	idx := indexOf(rows, rec.ComputerName)
	if idx >= 0 {
		rows[idx] = rec
		outcome = Updated
	} else {
		rows = append(rows, rec)
	}

	if err := writeRows(path, rows, mode); err != nil {
		return 0, err
	}
	return outcome, nil
}

// Load returns every row of the inventory file at path in file order.
// A missing file yields no rows and no error.
func Load(path string) ([]Record, error) {
	rows, _, err := readRows(path)
	return rows, err
}

func indexOf(rows []Record, name string) int {
	for i := range rows {
		if rows[i].ComputerName == name {
			return i
		}
	}
	return -1
}

func readRows(path string) ([]Record, fs.FileMode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0o644, nil
		}
		return nil, 0, &IOError{Op: "read", Path: path, Err: err}
	}

	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(data) == 0 {
		return nil, mode, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Header)

	all, err := r.ReadAll()
	if err != nil {
		return nil, 0, &IOError{Op: "parse", Path: path, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if len(all) == 0 || !headerMatches(all[0]) {
		return nil, 0, &IOError{Op: "parse", Path: path, Err: fmt.Errorf("%w: unexpected header", ErrMalformed)}
	}

	rows := make([]Record, 0, len(all)-1)
	for _, f := range all[1:] {
		rows = append(rows, recordFromFields(f))
	}
	return rows, mode, nil
}

func writeRows(path string, rows []Record, mode fs.FileMode) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}
	for _, rec := range rows {
		if err := w.Write(rec.Fields()); err != nil {
			return &IOError{Op: "encode", Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}

	if err := replaceFile(path, buf.Bytes(), mode); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// replaceFile writes data next to path and renames it over path.
func replaceFile(path string, data []byte, mode fs.FileMode) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	tmpName = ""
	return nil
}
