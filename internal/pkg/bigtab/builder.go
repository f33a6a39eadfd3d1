package bigtab

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"

	"github.com/mattetti/filebuffer"
)

// Builder accumulates rows and produces a table in the documented
// column-major layout. The production tables come from an external
// encoder; Builder exists for fixtures, demos and tests.
type Builder struct {
	columns []string
	rows    [][]float64
}

// NewBuilder returns a Builder for a table with the given columns.
func NewBuilder(columns []string) *Builder {
	return &Builder{columns: columns}
}

// Append adds one row. The row must have one value per column.
func (b *Builder) Append(row ...float64) error {
	if len(row) != len(b.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(b.columns))
	}
	appended := make([]float64, len(row))
	copy(appended, row)
	b.rows = append(b.rows, appended)
	return nil
}

func (b *Builder) descriptor(backing string) Descriptor {
	return Descriptor{
		Backing: backing,
		Rows:    int64(len(b.rows)),
		Cols:    len(b.columns),
		Columns: b.columns,
		Kind:    KindFloat64,
		Layout:  LayoutColumnMajor,
	}
}

// encode lays the accumulated rows out column-major.
func (b *Builder) encode() []byte {
	rows, cols := int64(len(b.rows)), len(b.columns)
	raw := make([]byte, rows*int64(cols)*elemSize)
	for col := 0; col < cols; col++ {
		base := int64(col) * rows * elemSize
		for row := int64(0); row < rows; row++ {
			bits := math.Float64bits(b.rows[row][col])
			binary.LittleEndian.PutUint64(raw[base+row*elemSize:], bits)
		}
	}
	return raw
}

// Table builds an in-memory table from the accumulated rows.
func (b *Builder) Table() (*Table, error) {
	raw := b.encode()
	buf := filebuffer.New(raw)
	return New(b.descriptor("memory"), buf, int64(len(raw)))
}

// Save writes the descriptor and backing file for the named table into
// dir, and returns the descriptor path.
func (b *Builder) Save(dir, name string) (string, error) {
	raw := b.encode()
	backingPath := filepath.Join(dir, BackingFileName(name))
	if err := ioutil.WriteFile(backingPath, raw, 0644); err != nil {
		return "", err
	}

	desc := b.descriptor(BackingFileName(name))
	encoded, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return "", err
	}
	descPath := filepath.Join(dir, DescriptorFileName(name))
	if err := ioutil.WriteFile(descPath, encoded, 0644); err != nil {
		return "", err
	}
	return descPath, nil
}
