// Package publish stores rendered snapshots in a directory or an S3 bucket.
//
//	p, err := publish.Open(ctx, "s3://my-bucket/site", publish.WithRegion("eu-west-1"))
//	loc, err := p.Publish(ctx, "index.html", []byte(doc.HTML()))
//
// Failures are reported as E010 errors wrapping the underlying cause.
package publish
