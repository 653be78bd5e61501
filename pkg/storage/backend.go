// Package storage writes exported artifacts to a local directory or S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Location is a parsed export target.
type Location struct {
	Bucket string // Empty for the local filesystem.
	Prefix string
	Dir    string
}

func (l Location) IsS3() bool { return l.Bucket != "" }

// ParseLocation splits "s3://bucket/prefix" targets from local directories.
func ParseLocation(target string) (Location, error) {
	if !strings.HasPrefix(target, "s3://") {
		if target == "" {
			return Location{}, errors.New("empty storage target")
		}
		return Location{Dir: target}, nil
	}

	rest := strings.TrimPrefix(target, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("s3 target %q has no bucket", target)
	}
	return Location{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// Open returns the store behind target. S3 credentials come from the
// standard shared config chain.
func Open(ctx context.Context, target string) (BlobStore, error) {
	loc, err := ParseLocation(target)
	if err != nil {
		return nil, err
	}
	if !loc.IsS3() {
		return NewLocalStore(loc.Dir), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3Store(cfg, loc.Bucket, loc.Prefix), nil
}
