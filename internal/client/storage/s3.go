package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/permavault/internal/common"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}

	now = time.Now
)

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config points at an S3-compatible bucket.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Store writes each upload under a fresh key and records the tags as
// object metadata.
type S3Store struct {
	client   s3API
	bucket   string
	endpoint string
}

func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: c.Bucket, endpoint: strings.TrimRight(c.BaseEndpoint, "/")}, nil
}

func newObjectKey() string {
	d := now().UTC()
	return fmt.Sprintf("uploads/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3Store) Put(ctx context.Context, data []byte, tags []Tag) (Receipt, error) {
	key := newObjectKey()

	in := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: make(map[string]string, len(tags)),
	}
	for _, t := range tags {
		if t.Name == "Content-Type" {
			in.ContentType = aws.String(t.Value)
			continue
		}
		in.Metadata[strings.ToLower(t.Name)] = t.Value
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return Receipt{}, fmt.Errorf("%w: s3 put: %v", common.ErrNetwork, err)
	}
	return Receipt{ID: key, URL: s.endpoint + "/" + s.bucket + "/" + key}, nil
}

func (s *S3Store) Get(ctx context.Context, id string, limit int64) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3 get %s: %v", common.ErrNetwork, id, err)
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body, limit)
	if errors.Is(err, ErrTooLarge) {
		return nil, fmt.Errorf("s3 %s: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: s3 read %s: %v", common.ErrNetwork, id, err)
	}
	return data, nil
}
