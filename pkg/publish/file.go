package publish

import (
	"context"
	"os"
	"path/filepath"
)

// FilePublisher writes snapshots into a directory.
type FilePublisher struct {
	dir string
}

// NewFilePublisher creates dir if needed.
func NewFilePublisher(dir string) (*FilePublisher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, publishError(dir, err)
	}
	return &FilePublisher{dir: dir}, nil
}

// Publish writes body to dir/name through a temporary file, so readers never
// see a partial snapshot.
func (p *FilePublisher) Publish(ctx context.Context, name string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}
	dest := filepath.Join(p.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", publishError(dest, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tnt-*")
	if err != nil {
		return "", publishError(dest, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", publishError(dest, err)
	}
	if err := tmp.Close(); err != nil {
		return "", publishError(dest, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", publishError(dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", publishError(dest, err)
	}
	return dest, nil
}
