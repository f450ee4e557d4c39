package blob

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps objects as plain files under Root.
type Local struct {
	Root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &OpError{Op: "init", Key: root, Err: err}
	}
	return &Local{Root: root}, nil
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", &OpError{Op: "resolve", Key: key, Err: errors.New("invalid key")}
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean)), nil
}

func (l *Local) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return &OpError{Op: "put", Key: key, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return &OpError{Op: "put", Key: key, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return &OpError{Op: "put", Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &OpError{Op: "put", Key: key, Err: err}
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return &OpError{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (l *Local) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", &OpError{Op: "get", Key: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, "", &OpError{Op: "get", Key: key, Err: err}
	}
	ct := mime.TypeByExtension(filepath.Ext(p))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return f, ct, nil
}

func (l *Local) Exists(ctx context.Context, key string) (bool, error) {
	p, err := l.path(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &OpError{Op: "stat", Key: key, Err: err}
	}
	return info.Mode().IsRegular(), nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &OpError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
