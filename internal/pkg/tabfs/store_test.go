package tabfs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

func buildTable(t *testing.T, columns []string, rows [][]float64) *bigtab.Table {
	builder := bigtab.NewBuilder(columns)
	for _, row := range rows {
		assert.Nil(t, builder.Append(row...))
	}
	table, err := builder.Table()
	assert.Nil(t, err)
	return table
}

func TestInferStore(t *testing.T) {
	store, err := InferStore(".")
	assert.Nil(t, err)
	assert.IsType(t, &LocalStore{}, store)

	store, err = InferStore("s3://flights/encoded")
	assert.Nil(t, err)
	assert.IsType(t, &S3Store{}, store)
}

func TestParseS3Location(t *testing.T) {
	bucket, prefix := parseS3Location("s3://flights/encoded/2008/")
	assert.Equal(t, "flights", bucket)
	assert.Equal(t, "encoded/2008", prefix)

	bucket, prefix = parseS3Location("s3://flights")
	assert.Equal(t, "flights", bucket)
	assert.Equal(t, "", prefix)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	builder := bigtab.NewBuilder([]string{"a", "b"})
	assert.Nil(t, builder.Append(1, 2))
	_, err := builder.Save(dir, "flights")
	assert.Nil(t, err)

	store := &LocalStore{Dir: dir}
	table, err := store.Open("flights")
	assert.Nil(t, err)
	defer table.Close()
	assert.Equal(t, int64(1), table.Rows())

	_, err = store.Open("missing")
	assert.True(t, errors.Is(err, bigtab.ErrNotFound))
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	table := buildTable(t, []string{"a"}, [][]float64{{1}})
	store.Register("flights", table)

	opened, err := store.Open("flights")
	assert.Nil(t, err)
	assert.Same(t, table, opened)

	_, err = store.Open("missing")
	assert.True(t, errors.Is(err, bigtab.ErrNotFound))
}
