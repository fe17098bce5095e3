package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestFileStoreWriteAndURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	key, err := store.Write(context.Background(), "./visualizations//mb.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "visualizations/mb.png" {
		t.Fatalf("key = %q", key)
	}
	data, err := os.ReadFile(filepath.Join(dir, "visualizations", "mb.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("file content = %q, err = %v", data, err)
	}
	if got := store.URL(key); got != "http://localhost:8080/static/visualizations/mb.png" {
		t.Fatalf("URL = %q", got)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	for _, key := range []string{"", "   ", "../etc/passwd", "a/../../b", ".."} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("sanitizeKey(%q) should fail", key)
		}
	}
	if got, err := sanitizeKey(`\a\b.png`); err != nil || got != "a/b.png" {
		t.Fatalf("sanitizeKey backslashes = %q, %v", got, err)
	}
}

func TestFileStoreHonoursContext(t *testing.T) {
	store, _ := NewFileStore(t.TempDir(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "x.png", nil, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("Write error = %v", err)
	}
}

type fakePut struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StoreWrite(t *testing.T) {
	put := &fakePut{}
	store := newS3Store(put, S3Config{Bucket: "boards", Region: "eu-central-1", KeyPrefix: "/deko/"})

	key, err := store.Write(context.Background(), "visualizations/mb.png", []byte("data"), "image/png")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "deko/visualizations/mb.png" {
		t.Fatalf("key = %q", key)
	}
	if aws.ToString(put.input.Bucket) != "boards" || aws.ToString(put.input.ContentType) != "image/png" || string(put.body) != "data" {
		t.Fatalf("put input = %+v body=%q", put.input, put.body)
	}
	if got := store.URL(key); got != "https://boards.s3.eu-central-1.amazonaws.com/deko/visualizations/mb.png" {
		t.Fatalf("URL = %q", got)
	}
}

func TestS3StorePathStyleURL(t *testing.T) {
	store := newS3Store(&fakePut{}, S3Config{Bucket: "b", Region: "us-east-1", Endpoint: "http://minio:9000/", ForcePathStyle: true})
	if got := store.URL("k.png"); got != "http://minio:9000/b/k.png" {
		t.Fatalf("URL = %q", got)
	}
	if (S3Config{Bucket: "b"}).Enabled() {
		t.Fatalf("config without region should be disabled")
	}
}
