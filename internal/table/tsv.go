package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SourceReadError reports a source that could not be opened or parsed as a
// tab-separated table.
type SourceReadError struct {
	Path string
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *SourceReadError) Error() string {
	src := e.Path
	if src == "" {
		src = "source"
	}
	if e.Line > 0 {
		return fmt.Sprintf("read %s: line %d: %v", src, e.Line, e.Err)
	}
	return fmt.Sprintf("read %s: %v", src, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// SinkWriteError reports a sink that could not be opened or written.
type SinkWriteError struct {
	Path string
	Err  error
}

func (e *SinkWriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write sink: %v", e.Err)
	}
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }

var (
	errNoHeader   = errors.New("missing header row")
	errEmptyName  = errors.New("empty column name in header")
	errRowTooWide = errors.New("row has more fields than the header")
)

// Read parses a tab-separated table. The first line names the columns.
// Values are kept verbatim; empty fields become Null and rows shorter than
// the header are padded with Null.
func Read(r io.Reader) (*Table, error) {
	return read(r, "")
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	defer f.Close()
	return read(bufio.NewReader(f), path)
}

func read(r io.Reader, path string) (*Table, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SourceReadError{Path: path, Err: errNoHeader}
	}
	if err != nil {
		return nil, parseError(path, err)
	}
	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if name == "" {
			return nil, &SourceReadError{Path: path, Line: 1, Err: errEmptyName}
		}
		if _, dup := seen[name]; dup {
			return nil, &SourceReadError{Path: path, Line: 1, Err: fmt.Errorf("duplicate column %q", name)}
		}
		seen[name] = struct{}{}
	}

	t := New(header...)
	t.lines = []int{}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(path, err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) > len(header) {
			return nil, &SourceReadError{Path: path, Line: line, Err: errRowTooWide}
		}
		row := make([]Cell, len(header))
		for i, f := range fields {
			if f != "" {
				row[i] = Text(f)
			}
		}
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func parseError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &SourceReadError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &SourceReadError{Path: path, Err: err}
}

// Write serializes t as a header line followed by one line per row. There is
// no row-index column and Null cells are written as empty fields.
func Write(w io.Writer, t *Table) error {
	if err := write(w, t); err != nil {
		return &SinkWriteError{Err: err}
	}
	return nil
}

func write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	fields := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, c := range row {
			fields[i] = c.String()
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes t to path. The table is written to a temporary file in
// the same directory and renamed over path, so path is either fully
// replaced or left as it was.
func WriteFile(path string, t *Table) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return &SinkWriteError{Path: path, Err: err}
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return &SinkWriteError{Path: path, Err: err}
	}

	bw := bufio.NewWriter(f)
	if err := write(bw, t); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &SinkWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &SinkWriteError{Path: path, Err: err}
	}
	return nil
}
