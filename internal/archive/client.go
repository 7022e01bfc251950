// Package archive pushes aged artifacts to S3-compatible storage
// before the retention sweep removes them from disk.
package archive

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"viral-clip-gen/internal"
)

// Archiver is what the retention sweeper needs: store a local file
// under a key, enumerate what is already archived.
type Archiver interface {
	PutFile(ctx context.Context, key, path string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type s3Archiver struct {
	bucket string
	prefix string
	api    *awss3.Client
	upl    *manager.Uploader
}

func New(cfg internal.Config) (Archiver, error) {
	endpoint := cfg.S3Endpoint
	forcePathStyle := !strings.Contains(endpoint, "amazonaws.com")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.UsePathStyle = forcePathStyle
		o.BaseEndpoint = &endpoint
	})

	return &s3Archiver{
		bucket: cfg.S3Bucket,
		prefix: cfg.S3ArchivePrefix,
		api:    client,
		upl:    manager.NewUploader(client),
	}, nil
}

func (a *s3Archiver) PutFile(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for archive: %w", path, err)
	}
	defer f.Close()

	fullKey := a.prefix + key
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = a.upl.Upload(ctx, &awss3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &fullKey,
		Body:        f,
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

func (a *s3Archiver) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	full := a.prefix + prefix
	p := awss3.NewListObjectsV2Paginator(a.api, &awss3.ListObjectsV2Input{Bucket: &a.bucket, Prefix: &full})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			sz := int64(0)
			if obj.Size != nil {
				sz = *obj.Size
			}
			var lm time.Time
			if obj.LastModified != nil {
				lm = *obj.LastModified
			}
			out = append(out, ObjectInfo{Key: strings.TrimPrefix(*obj.Key, a.prefix), Size: sz, LastModified: lm})
		}
	}
	return out, nil
}

func (a *s3Archiver) Delete(ctx context.Context, key string) error {
	fullKey := a.prefix + key
	_, err := a.api.DeleteObject(ctx, &awss3.DeleteObjectInput{Bucket: &a.bucket, Key: &fullKey})
	return err
}
