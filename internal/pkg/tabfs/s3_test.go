package tabfs

import (
	"bytes"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

type s3Mock struct {
	s3iface.S3API
	objects map[string][]byte
	fetches int
}

func (m *s3Mock) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}
	m.fetches++
	return &s3.GetObjectOutput{
		Body: ioutil.NopCloser(bytes.NewReader(data)),
	}, nil
}

func newS3Mock(t *testing.T) *s3Mock {
	dir := t.TempDir()
	builder := bigtab.NewBuilder([]string{"a", "b"})
	assert.Nil(t, builder.Append(1, 2))
	assert.Nil(t, builder.Append(3, 4))
	_, err := builder.Save(dir, "flights")
	assert.Nil(t, err)

	objects := make(map[string][]byte)
	for _, name := range []string{bigtab.DescriptorFileName("flights"), bigtab.BackingFileName("flights")} {
		data, err := ioutil.ReadFile(filepath.Join(dir, name))
		assert.Nil(t, err)
		objects["encoded/"+name] = data
	}
	return &s3Mock{objects: objects}
}

func TestS3StoreOpen(t *testing.T) {
	mock := newS3Mock(t)
	store := &S3Store{
		client:   mock,
		bucket:   "flights-bucket",
		prefix:   "encoded",
		cacheDir: t.TempDir(),
	}

	table, err := store.Open("flights")
	assert.Nil(t, err)
	defer table.Close()
	assert.Equal(t, int64(2), table.Rows())

	v, err := table.At(1, 1)
	assert.Nil(t, err)
	assert.Equal(t, 4.0, v)
}

func TestS3StoreCachesFetches(t *testing.T) {
	mock := newS3Mock(t)
	store := &S3Store{
		client:   mock,
		bucket:   "flights-bucket",
		prefix:   "encoded",
		cacheDir: t.TempDir(),
	}

	table, err := store.Open("flights")
	assert.Nil(t, err)
	table.Close()
	assert.Equal(t, 2, mock.fetches)

	// A warm re-open serves both files from the local cache.
	table, err = store.Open("flights")
	assert.Nil(t, err)
	table.Close()
	assert.Equal(t, 2, mock.fetches)
}

func TestS3StoreMissingTable(t *testing.T) {
	store := &S3Store{
		client:   &s3Mock{objects: map[string][]byte{}},
		bucket:   "flights-bucket",
		prefix:   "encoded",
		cacheDir: t.TempDir(),
	}

	_, err := store.Open("flights")
	assert.True(t, errors.Is(err, bigtab.ErrNotFound))
}
