package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-cmp/cmp"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
)

type fakeS3 struct {
	puts []put
	err  error
}

type put struct {
	Bucket, Key, ContentType, Body string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, put{
		Bucket:      aws.ToString(in.Bucket),
		Key:         aws.ToString(in.Key),
		ContentType: aws.ToString(in.ContentType),
		Body:        string(body),
	})
	return &s3.PutObjectOutput{}, nil
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"s3://bucket/site/v1/", Target{Bucket: "bucket", Prefix: "site/v1"}, false},
		{"s3://bucket", Target{Bucket: "bucket"}, false},
		{"./out", Target{Dir: "./out"}, false},
		{"s3:///prefix", Target{}, true},
		{"  ", Target{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, tnterrors.New("E010")) {
			t.Errorf("ParseTarget(%q) error = %v, want E010", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseTarget(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestFilePublisher(t *testing.T) {
	dir := t.TempDir()
	p, err := Open(context.Background(), filepath.Join(dir, "site"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	loc, err := p.Publish(context.Background(), "pages/index.html", []byte("<p>hi</p>"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got, err := os.ReadFile(loc)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "<p>hi</p>" {
		t.Errorf("content = %q", got)
	}

	// Overwrite in place.
	if _, err := p.Publish(context.Background(), "pages/index.html", []byte("v2")); err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	got, _ = os.ReadFile(loc)
	if string(got) != "v2" {
		t.Errorf("content after overwrite = %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(loc))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, temporary files left behind", len(entries))
	}
}

func TestInvalidNames(t *testing.T) {
	p, err := NewFilePublisher(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "../escape.html", "dir/", "/abs.html"} {
		if _, err := p.Publish(context.Background(), name, nil); !errors.Is(err, tnterrors.New("E010")) {
			t.Errorf("Publish(%q) = %v, want E010", name, err)
		}
	}
}

func TestS3Publisher(t *testing.T) {
	fake := &fakeS3{}
	p, err := Open(context.Background(), "s3://snapshots/site", WithS3Client(fake))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	loc, err := p.Publish(context.Background(), "index.html", []byte("<p>hi</p>"))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if loc != "s3://snapshots/site/index.html" {
		t.Errorf("location = %q", loc)
	}
	want := []put{{
		Bucket:      "snapshots",
		Key:         "site/index.html",
		ContentType: "text/html; charset=utf-8",
		Body:        "<p>hi</p>",
	}}
	if diff := cmp.Diff(want, fake.puts); diff != "" {
		t.Errorf("puts (-want +got):\n%s", diff)
	}
}

func TestS3PublisherError(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	p := NewS3Publisher(fake, "b", "")
	_, err := p.Publish(context.Background(), "data.json", []byte("{}"))
	if !errors.Is(err, tnterrors.New("E010")) {
		t.Fatalf("Publish error = %v, want E010", err)
	}
	if p.Key("data.json") != "data.json" {
		t.Errorf("Key without prefix = %q", p.Key("data.json"))
	}
}
