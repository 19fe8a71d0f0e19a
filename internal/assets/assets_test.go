// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package assets

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestDirOpen(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>dbgate</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := Dir(root)

	rc, err := src.Open(context.Background(), "index.html")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "<h1>dbgate</h1>" {
		t.Errorf("body = %q", body)
	}

	if _, err := src.Open(context.Background(), "editor.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing page: err = %v, want ErrNotFound", err)
	}
}

func TestDirOpenRejectsTraversal(t *testing.T) {
	src := Dir(t.TempDir())
	for _, name := range []string{"../etc/passwd", "a/b.html", "..", "", `..\x`} {
		if _, err := src.Open(context.Background(), name); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) err = %v, want invalid name", name, err)
		}
	}
}

func TestParseS3URL(t *testing.T) {
	tests := []struct {
		url        string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{url: "s3://assets/gate", wantBucket: "assets", wantPrefix: "gate"},
		{url: "s3://assets/gate/ui/", wantBucket: "assets", wantPrefix: "gate/ui"},
		{url: "s3://assets", wantBucket: "assets"},
		{url: "s3://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			bucket, prefix, err := parseS3URL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.wantBucket || prefix != tt.wantPrefix {
				t.Errorf("got (%q, %q), want (%q, %q)", bucket, prefix, tt.wantBucket, tt.wantPrefix)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string]string
	gotKey  string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotKey = *in.Key
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceOpen(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"assets/gate/ddl.html": "ddl page"}}
	src := &S3Source{client: fake, Bucket: "assets", Prefix: "gate"}

	rc, err := src.Open(context.Background(), "ddl.html")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "ddl page" {
		t.Errorf("body = %q", body)
	}
	if fake.gotKey != "gate/ddl.html" {
		t.Errorf("key = %q", fake.gotKey)
	}

	if _, err := src.Open(context.Background(), "index.html"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing object: err = %v, want ErrNotFound", err)
	}
}
