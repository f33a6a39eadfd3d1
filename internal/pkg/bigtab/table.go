// Package bigtab provides read-only access to large, out-of-core numeric
// tables. A table is an immutable column-major matrix of float64 elements
// in a single backing file, described by a JSON descriptor side file.
// File-backed tables are memory-mapped, so columns far larger than working
// memory can be scanned without materializing them.
package bigtab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/exp/mmap"
)

const elemSize = 8

// scanChunk is the number of elements read per ReadAt during column scans.
const scanChunk = 64 * 1024

// ErrNotFound indicates a missing descriptor or backing file.
var ErrNotFound = errors.New("table not found")

// FormatError indicates a descriptor or backing file that does not match
// the expected layout.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("bad table format: %s", e.Reason)
	}
	return fmt.Sprintf("bad table format in %s: %s", e.Path, e.Reason)
}

// storage is what a Table reads elements from. Implementations must be
// safe for concurrent ReadAt calls.
type storage interface {
	io.ReaderAt
	io.Closer
}

// Table is a read-only handle on an open table. A Table may be shared by
// concurrent readers; Close invalidates all of them.
type Table struct {
	desc Descriptor
	data storage
}

// Open maps the table described by the descriptor file at descPath.
// The backing file is resolved relative to the descriptor's directory and
// mapped read-only into the address space; its contents are not copied.
func Open(descPath string) (*Table, error) {
	desc, err := loadDescriptor(descPath)
	if err != nil {
		return nil, err
	}

	backing := filepath.Join(filepath.Dir(descPath), desc.Backing)
	reader, err := mmap.Open(backing)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("backing file %s: %w", backing, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if int64(reader.Len()) != desc.size() {
		reader.Close()
		return nil, &FormatError{
			Path:   backing,
			Reason: fmt.Sprintf("backing file is %d bytes, descriptor implies %d", reader.Len(), desc.size()),
		}
	}

	return &Table{desc: desc, data: reader}, nil
}

// New creates a Table over caller-provided storage, e.g. an in-memory
// buffer. size must be the total storage length in bytes.
func New(desc Descriptor, data storage, size int64) (*Table, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	if size != desc.size() {
		return nil, &FormatError{
			Reason: fmt.Sprintf("storage is %d bytes, descriptor implies %d", size, desc.size()),
		}
	}
	return &Table{desc: desc, data: data}, nil
}

// Descriptor returns the table's descriptor.
func (t *Table) Descriptor() Descriptor {
	return t.desc
}

// Rows returns the number of rows in the table.
func (t *Table) Rows() int64 {
	return t.desc.Rows
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return t.desc.Columns
}

// Close releases the table's backing storage.
func (t *Table) Close() error {
	return t.data.Close()
}

// At returns the element at (row, col).
func (t *Table) At(row int64, col int) (float64, error) {
	if err := t.checkCol(col); err != nil {
		return 0, err
	}
	if row < 0 || row >= t.desc.Rows {
		return 0, fmt.Errorf("row %d out of range [0, %d)", row, t.desc.Rows)
	}
	var buf [elemSize]byte
	off := (int64(col)*t.desc.Rows + row) * elemSize
	if _, err := t.data.ReadAt(buf[:], off); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// Column returns a lazy view of one column. No elements are read until
// the view is indexed or scanned.
func (t *Table) Column(col int) (ColumnView, error) {
	if err := t.checkCol(col); err != nil {
		return ColumnView{}, err
	}
	return ColumnView{table: t, col: col}, nil
}

// ScanColumn calls fn for every element of a column in row order.
// The column's contiguous storage region is read in fixed-size chunks, so
// the scan never holds more than one chunk in memory.
func (t *Table) ScanColumn(col int, fn func(row int64, v float64) error) error {
	if err := t.checkCol(col); err != nil {
		return err
	}

	base := int64(col) * t.desc.Rows * elemSize
	buf := make([]byte, scanChunk*elemSize)
	for start := int64(0); start < t.desc.Rows; start += scanChunk {
		n := t.desc.Rows - start
		if n > scanChunk {
			n = scanChunk
		}
		chunk := buf[:n*elemSize]
		if _, err := t.data.ReadAt(chunk, base+start*elemSize); err != nil {
			return err
		}
		for i := int64(0); i < n; i++ {
			v := math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*elemSize:]))
			if err := fn(start+i, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// FilterRows returns the indices of all rows whose value in the given
// column equals value. NaN never matches.
func (t *Table) FilterRows(col int, value float64) ([]int64, error) {
	rows := make([]int64, 0)
	err := t.ScanColumn(col, func(row int64, v float64) error {
		if v == value {
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Submatrix materializes a dense sub-matrix for the given rows and
// columns. The result is indexed [rowIdx][colIdx].
func (t *Table) Submatrix(rows []int64, cols []int) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(cols))
		for j, col := range cols {
			v, err := t.At(row, col)
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return out, nil
}

func (t *Table) checkCol(col int) error {
	if col < 0 || col >= t.desc.Cols {
		return fmt.Errorf("column %d out of range [0, %d)", col, t.desc.Cols)
	}
	return nil
}

// ColumnView is a lazy, read-only view of a single column.
type ColumnView struct {
	table *Table
	col   int
}

// Len returns the number of elements in the column.
func (v ColumnView) Len() int64 {
	return v.table.desc.Rows
}

// At returns the element at the given row.
func (v ColumnView) At(row int64) (float64, error) {
	return v.table.At(row, v.col)
}

// Scan calls fn for every element in row order.
func (v ColumnView) Scan(fn func(row int64, val float64) error) error {
	return v.table.ScanColumn(v.col, fn)
}
