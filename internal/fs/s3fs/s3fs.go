// Package s3fs exposes an S3 bucket as a directory tree. Directories are
// zero-length marker objects whose key ends in "/". S3 has no erasure-coding
// policies, so this filesystem does not implement fs.ErasureCoding.
package s3fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/raoulx24/dirsync/internal/fs"
)

// Client is the subset of *s3.Client used here.
type Client interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Config struct {
	Client Client
	Bucket string

	// KeyPrefix roots the tree below a prefix, e.g. "backups/".
	KeyPrefix string
}

type FS struct {
	client Client
	bucket string
	prefix string
}

var _ fs.FS = (*FS)(nil)

func New(cfg Config) (*FS, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3fs: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3fs: bucket is required")
	}

	prefix := strings.Trim(cfg.KeyPrefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &FS{client: cfg.Client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// objectKey maps a path to the key of a plain object.
func (f *FS) objectKey(p string) string {
	return f.prefix + strings.TrimPrefix(path.Clean("/"+p), "/")
}

// dirKey maps a path to its directory marker key, "" for the root.
func (f *FS) dirKey(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return f.prefix
	}
	return f.objectKey(p) + "/"
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

func (f *FS) head(ctx context.Context, key string) (*s3.HeadObjectOutput, bool, error) {
	out, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("head s3://%s/%s: %w", f.bucket, key, err)
	}
	return out, true, nil
}

func (f *FS) hasChildren(ctx context.Context, dirKey string) (bool, error) {
	out, err := f.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(f.bucket),
		Prefix:  aws.String(dirKey),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("list s3://%s/%s: %w", f.bucket, dirKey, err)
	}
	return len(out.Contents) > 0 || len(out.CommonPrefixes) > 0, nil
}

func (f *FS) Stat(ctx context.Context, p string) (fs.FileInfo, error) {
	p = path.Clean("/" + p)
	if p == "/" {
		return fs.FileInfo{Path: p, IsDir: true}, nil
	}

	out, ok, err := f.head(ctx, f.dirKey(p))
	if err != nil {
		return fs.FileInfo{}, err
	}
	if ok {
		return fs.FileInfo{Path: p, IsDir: true, ModTime: aws.ToTime(out.LastModified)}, nil
	}

	out, ok, err = f.head(ctx, f.objectKey(p))
	if err != nil {
		return fs.FileInfo{}, err
	}
	if ok {
		return fs.FileInfo{Path: p, ModTime: aws.ToTime(out.LastModified)}, nil
	}

	// implicit directory: children exist without a marker
	ok, err = f.hasChildren(ctx, f.dirKey(p))
	if err != nil {
		return fs.FileInfo{}, err
	}
	if ok {
		return fs.FileInfo{Path: p, IsDir: true}, nil
	}
	return fs.FileInfo{}, fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
}

// Mkdirs writes a marker for p. It returns false when a plain object sits
// at p or at one of its parents.
func (f *FS) Mkdirs(ctx context.Context, p string) (bool, error) {
	p = path.Clean("/" + p)
	if p == "/" {
		return true, nil
	}

	for dir := p; dir != "/"; dir = path.Dir(dir) {
		_, isFile, err := f.head(ctx, f.objectKey(dir))
		if err != nil {
			return false, err
		}
		if isFile {
			return false, nil
		}
	}

	_, err := f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(f.bucket),
		Key:           aws.String(f.dirKey(p)),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	})
	if err != nil {
		return false, fmt.Errorf("put s3://%s/%s: %w", f.bucket, f.dirKey(p), err)
	}
	return true, nil
}

func (f *FS) ListDir(ctx context.Context, p string) ([]fs.FileInfo, error) {
	p = path.Clean("/" + p)
	prefix := f.dirKey(p)

	var (
		out   []fs.FileInfo
		token *string
	)
	for {
		page, err := f.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(f.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", f.bucket, prefix, err)
		}

		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			out = append(out, fs.FileInfo{Path: path.Join(p, name), IsDir: true})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			out = append(out, fs.FileInfo{
				Path:    path.Join(p, strings.TrimPrefix(key, prefix)),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}

	if len(out) == 0 && p != "/" {
		info, err := f.Stat(ctx, p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir {
			return nil, fmt.Errorf("list %s: %w", p, fs.ErrNotDirectory)
		}
	}
	return out, nil
}
