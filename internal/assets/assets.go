// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package assets serves the gateway's static pages from a local directory or
// an S3 bucket prefix.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when a page has no backing object.
var ErrNotFound = errors.New("asset not found")

// Pages maps request paths to the files behind them.
var Pages = map[string]string{
	"/":          "index.html",
	"/editor":    "editor.html",
	"/ddl":       "ddl.html",
	"/artifacts": "artifacts.html",
}

// Source reads named static files.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// S3Options configures an s3:// source.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Open returns the source for root: s3://bucket/prefix or a local directory.
func Open(ctx context.Context, root string, opts S3Options) (Source, error) {
	if strings.HasPrefix(root, "s3://") {
		bucket, prefix, err := parseS3URL(root)
		if err != nil {
			return nil, err
		}
		client, err := newS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &S3Source{client: client, Bucket: bucket, Prefix: prefix}, nil
	}
	return Dir(root), nil
}

// cleanName rejects anything but a bare file name.
func cleanName(name string) (string, error) {
	if name == "" || name != path.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	return name, nil
}

// Dir is a local directory source.
type Dir string

func (d Dir) Open(_ context.Context, name string) (io.ReadCloser, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(string(d), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (d Dir) String() string { return string(d) }
