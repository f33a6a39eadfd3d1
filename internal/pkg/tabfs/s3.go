package tabfs

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

// S3Store fetches tables from an S3 prefix into a local cache directory
// and memory-maps the cached copies. Input tables are immutable, so a
// cached copy stays valid for the lifetime of the process.
type S3Store struct {
	client   s3iface.S3API
	bucket   string
	prefix   string
	cacheDir string
}

// NewS3Store creates a store for an "s3://bucket/prefix" location.
func NewS3Store(location string) (*S3Store, error) {
	os.Setenv("AWS_SDK_LOAD_CONFIG", "true")
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	cacheDir, err := ioutil.TempDir("", "flightquery-s3")
	if err != nil {
		return nil, err
	}

	bucket, prefix := parseS3Location(location)
	return &S3Store{
		client:   s3.New(sess),
		bucket:   bucket,
		prefix:   prefix,
		cacheDir: cacheDir,
	}, nil
}

func parseS3Location(location string) (bucket, prefix string) {
	trimmed := strings.TrimPrefix(location, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}
	return bucket, prefix
}

func (s *S3Store) Open(name string) (*bigtab.Table, error) {
	descPath, err := s.fetch(bigtab.DescriptorFileName(name))
	if err != nil {
		return nil, err
	}

	raw, err := ioutil.ReadFile(descPath)
	if err != nil {
		return nil, err
	}
	var desc bigtab.Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return nil, &bigtab.FormatError{Path: descPath, Reason: err.Error()}
	}

	backingPath, err := s.fetch(desc.Backing)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(backingPath); err == nil {
		log.Debugf("Fetched table %s from s3://%s/%s (%s)",
			name, s.bucket, s.prefix, humanize.Bytes(uint64(info.Size())))
	}

	return bigtab.Open(descPath)
}

// fetch downloads one object into the cache directory, skipping the
// download if a cached copy already exists (e.g. on warm Lambda starts).
func (s *S3Store) fetch(fileName string) (string, error) {
	dest := filepath.Join(s.cacheDir, fileName)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	key := path.Join(s.prefix, fileName)
	output, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return "", fmt.Errorf("s3://%s/%s: %w", s.bucket, key, bigtab.ErrNotFound)
		}
		return "", err
	}
	defer output.Body.Close()

	file, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, output.Body); err != nil {
		return "", err
	}
	return dest, nil
}
