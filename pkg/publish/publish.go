package publish

import (
	"context"
	"mime"
	"path"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
)

// Publisher stores a rendered snapshot under name and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, name string, body []byte) (string, error)
}

// Target is a parsed publish destination.
type Target struct {
	// Bucket is set for s3:// targets.
	Bucket string

	// Prefix is the key prefix within the bucket, without a trailing slash.
	Prefix string

	// Dir is set for directory targets.
	Dir string
}

// IsS3 reports whether t names a bucket.
func (t Target) IsS3() bool {
	return t.Bucket != ""
}

// ParseTarget parses "s3://bucket/prefix" or a directory path.
func ParseTarget(target string) (Target, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Target{}, tnterrors.New("E010").WithDetail("publish target is empty")
	}
	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		return Target{Dir: target}, nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Target{}, tnterrors.New("E010").
			WithDetailf("target %q has no bucket", target).
			WithSuggestion(`Write the target as "s3://bucket/prefix"`)
	}
	return Target{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

type options struct {
	region string
	client PutObjectAPI
}

// Option configures Open.
type Option func(*options)

// WithRegion sets the AWS region used for s3:// targets.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithS3Client uses client instead of one built from the default AWS
// configuration.
func WithS3Client(client PutObjectAPI) Option {
	return func(o *options) {
		o.client = client
	}
}

// Open resolves target to a publisher. S3 clients are configured from the
// environment the way the AWS SDK does by default.
func Open(ctx context.Context, target string, opts ...Option) (Publisher, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if !t.IsS3() {
		return NewFilePublisher(t.Dir)
	}

	client := o.client
	if client == nil {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if o.region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(o.region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, tnterrors.New("E010").WithDetail("loading AWS configuration").Wrap(err)
		}
		client = s3.NewFromConfig(cfg)
	}
	return NewS3Publisher(client, t.Bucket, t.Prefix), nil
}

// contentType guesses the media type from the name's extension.
func contentType(name string) string {
	switch path.Ext(name) {
	case "", ".html", ".htm":
		return "text/html; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "text/html; charset=utf-8"
}

func validName(name string) error {
	clean := path.Clean("/" + name)
	if name == "" || strings.HasSuffix(name, "/") || clean != "/"+name {
		return tnterrors.New("E010").WithDetailf("invalid snapshot name %q", name)
	}
	return nil
}

func publishError(location string, err error) error {
	return tnterrors.New("E010").WithDetailf("writing %s", location).Wrap(err)
}
