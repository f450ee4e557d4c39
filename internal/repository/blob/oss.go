package blob

import (
	"context"
	"errors"
	"io"
	"net/http"

	"simkas/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSS stores objects in an Aliyun OSS bucket.
type OSS struct {
	bucket *oss.Bucket
}

func NewOSS(cfg config.OSSConfig) (*OSS, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, &OpError{Op: "init", Key: cfg.Bucket, Err: err}
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, &OpError{Op: "init", Key: cfg.Bucket, Err: err}
	}
	return &OSS{bucket: bucket}, nil
}

func (o *OSS) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	if err := o.bucket.PutObject(key, r, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return &OpError{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (o *OSS) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	meta, err := o.bucket.GetObjectMeta(key, oss.WithContext(ctx))
	if err != nil {
		var svcErr oss.ServiceError
		if errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusNotFound {
			return nil, "", &OpError{Op: "get", Key: key, Err: ErrNotFound}
		}
		return nil, "", &OpError{Op: "get", Key: key, Err: err}
	}
	body, err := o.bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		return nil, "", &OpError{Op: "get", Key: key, Err: err}
	}
	return body, meta.Get("Content-Type"), nil
}

func (o *OSS) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := o.bucket.IsObjectExist(key, oss.WithContext(ctx))
	if err != nil {
		return false, &OpError{Op: "stat", Key: key, Err: err}
	}
	return ok, nil
}

func (o *OSS) Delete(ctx context.Context, key string) error {
	if err := o.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return &OpError{Op: "delete", Key: key, Err: err}
	}
	return nil
}
