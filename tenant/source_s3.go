package tenant

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of *s3.Client this package depends on, so tests can
// substitute a fake without standing up real AWS credentials.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Source loads tenant documents from an S3 bucket, one object per tenant
// under the configured prefix.
type S3Source struct {
	Client s3API
	Bucket string
	Prefix string
}

// NewS3Source constructs an S3Source backed by client.
func NewS3Source(client *s3.Client, bucket, prefix string) *S3Source {
	return &S3Source{Client: client, Bucket: bucket, Prefix: prefix}
}

func (s *S3Source) key(id string) string {
	return strings.TrimSuffix(s.Prefix, "/") + "/" + id + ".json"
}

func (s *S3Source) Load(ctx context.Context, id string) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("tenant s3 source: get object %s: %w", s.key(id), err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("tenant s3 source: read body: %w", err)
	}
	return data, nil
}

func (s *S3Source) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var token *string
	for {
		out, err := s.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.Bucket),
			Prefix:            aws.String(s.Prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("tenant s3 source: list objects: %w", err)
		}
		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.Prefix)
			name = strings.TrimPrefix(name, "/")
			if strings.HasSuffix(name, ".json") {
				ids = append(ids, strings.TrimSuffix(name, ".json"))
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		token = out.NextContinuationToken
	}
	return ids, nil
}
