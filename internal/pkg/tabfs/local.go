package tabfs

import (
	"path/filepath"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

// LocalStore opens tables from a directory on the local filesystem.
type LocalStore struct {
	Dir string
}

func (l *LocalStore) Open(name string) (*bigtab.Table, error) {
	return bigtab.Open(filepath.Join(l.Dir, bigtab.DescriptorFileName(name)))
}
