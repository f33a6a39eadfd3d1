// Package tabfs resolves named tables against a storage location and
// opens them as bigtab handles. Input data is read from a local directory
// or from S3; remote storage is abstracted so other backends can be added.
package tabfs

import (
	"strings"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

// Store opens named tables from some storage location. Stores are
// read-only; every Open returns an independent handle onto the same
// underlying data.
type Store interface {
	Open(name string) (*bigtab.Table, error)
}

// InferStore selects a Store implementation from the location's scheme.
// "s3://bucket/prefix" selects S3; anything else is a local directory.
func InferStore(location string) (Store, error) {
	if strings.HasPrefix(location, "s3://") {
		return NewS3Store(location)
	}
	return &LocalStore{Dir: location}, nil
}
