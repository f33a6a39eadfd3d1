package bigtab

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
)

const (
	// KindFloat64 is the only element kind currently produced by the
	// upstream encoder: little-endian IEEE 754 doubles, NaN for missing.
	KindFloat64 = "float64"

	// LayoutColumnMajor stores each column as one contiguous run of
	// elements in the backing file.
	LayoutColumnMajor = "column-major"
)

// Descriptor describes the on-disk layout of a table. It is stored as a
// JSON side file next to the backing matrix.
type Descriptor struct {
	Backing string   `json:"backing"` // backing file name, relative to the descriptor
	Rows    int64    `json:"rows"`
	Cols    int      `json:"cols"`
	Columns []string `json:"columns"` // column names, in storage order
	Kind    string   `json:"kind"`
	Layout  string   `json:"layout"`
}

// DescriptorFileName returns the descriptor file name for a table name.
func DescriptorFileName(name string) string {
	return name + ".desc.json"
}

// BackingFileName returns the backing matrix file name for a table name.
func BackingFileName(name string) string {
	return name + ".bin"
}

func (d *Descriptor) validate() error {
	if d.Kind != KindFloat64 {
		return &FormatError{Reason: fmt.Sprintf("unsupported element kind %q", d.Kind)}
	}
	if d.Layout != LayoutColumnMajor {
		return &FormatError{Reason: fmt.Sprintf("unsupported layout %q", d.Layout)}
	}
	if d.Rows < 0 {
		return &FormatError{Reason: fmt.Sprintf("negative row count %d", d.Rows)}
	}
	if d.Cols != len(d.Columns) {
		return &FormatError{
			Reason: fmt.Sprintf("descriptor declares %d columns but names %d", d.Cols, len(d.Columns)),
		}
	}
	if d.Backing == "" {
		return &FormatError{Reason: "descriptor names no backing file"}
	}
	return nil
}

// size returns the expected backing file size in bytes.
func (d *Descriptor) size() int64 {
	return d.Rows * int64(d.Cols) * elemSize
}

func loadDescriptor(path string) (Descriptor, error) {
	raw, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return Descriptor{}, fmt.Errorf("descriptor %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Descriptor{}, err
	}

	var desc Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return Descriptor{}, &FormatError{Path: path, Reason: err.Error()}
	}
	if err := desc.validate(); err != nil {
		err.(*FormatError).Path = path
		return Descriptor{}, err
	}
	return desc, nil
}
