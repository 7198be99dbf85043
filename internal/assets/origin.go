package assets

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/vango-dev/popular/internal/errors"
)

// ErrNotFound is returned by Origin.Open when a file doesn't exist.
var ErrNotFound = stderrors.New("asset not found")

// Origin is where static files are read from. Names are clean, relative,
// slash-separated paths.
type Origin interface {
	Open(ctx context.Context, name string) (*Object, error)
}

// Object is an opened static file.
type Object struct {
	Content io.ReadSeeker
	ModTime time.Time

	// ContentType is the type the origin reported, if any.
	ContentType string

	close func() error
}

// Close releases the object.
func (o *Object) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// FSOrigin serves files from a file system.
type FSOrigin struct {
	fsys fs.FS
}

// NewDirOrigin serves files from dir.
func NewDirOrigin(dir string) *FSOrigin {
	return &FSOrigin{fsys: os.DirFS(dir)}
}

// NewFSOrigin serves files from fsys.
func NewFSOrigin(fsys fs.FS) *FSOrigin {
	return &FSOrigin{fsys: fsys}
}

func (o *FSOrigin) Open(_ context.Context, name string) (*Object, error) {
	f, err := o.fsys.Open(name)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%s: file is not seekable", name)
	}
	return &Object{Content: rs, ModTime: info.ModTime(), close: f.Close}, nil
}

// S3API is the part of the S3 client the origin uses. *s3.Client
// implements it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates the bucket holding the bundles.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
}

// NewS3Client creates an anonymous S3 client; the bundles bucket is
// expected to be publicly readable.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  aws.AnonymousCredentials{},
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// S3Origin serves files from an S3 bucket under a key prefix.
type S3Origin struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Origin creates an S3Origin.
func NewS3Origin(client S3API, bucket, prefix string) *S3Origin {
	return &S3Origin{client: client, bucket: bucket, prefix: prefix}
}

// Open fetches the whole object. Bundles are small enough to buffer, and
// http.ServeContent needs to seek.
func (o *S3Origin) Open(ctx context.Context, name string) (*Object, error) {
	key := path.Join(o.prefix, name)

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, errors.New(errors.AssetFetchFailed).
			WithDetailf("s3://%s/%s", o.bucket, key).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New(errors.AssetFetchFailed).
			WithDetailf("s3://%s/%s", o.bucket, key).
			Wrap(err)
	}

	obj := &Object{Content: bytes.NewReader(data)}
	if out.LastModified != nil {
		obj.ModTime = *out.LastModified
	}
	if out.ContentType != nil {
		obj.ContentType = *out.ContentType
	}
	return obj, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if stderrors.As(err, &nsk) {
		return true
	}
	// Some S3-compatible stores answer with a bare NotFound code.
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return true
	}
	var status interface{ HTTPStatusCode() int }
	return stderrors.As(err, &status) && status.HTTPStatusCode() == 404
}
