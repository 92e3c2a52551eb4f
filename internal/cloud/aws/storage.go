package aws

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// deleteBatchMax is the S3 DeleteObjects per-request limit.
const deleteBatchMax = 1000

// Put writes one asset. Writes are plain overwrites, so re-uploading
// identical content is an observable no-op.
func (p *Provider) Put(ctx context.Context, bucket, key string, body []byte, cacheControl, contentType string) error {
	_, err := p.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		CacheControl:         aws.String(cacheControl),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return wrapRemote("upload to bucket", bucket, err)
	}
	return nil
}

// List returns the keys of one listing page. Buckets holding more objects
// than a single page need repeated teardown runs.
func (p *Provider) List(ctx context.Context, bucket string) ([]string, error) {
	out, err := p.S3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return nil, wrapRemote("list bucket", bucket, err)
	}
	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}

// DeleteBatch removes the given keys in chunks of the API limit.
func (p *Provider) DeleteBatch(ctx context.Context, bucket string, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchMax {
		end := start + deleteBatchMax
		if end > len(keys) {
			end = len(keys)
		}
		objects := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, s3types.ObjectIdentifier{Key: aws.String(key)})
		}
		_, err := p.S3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return wrapRemote("delete from bucket", bucket, err)
		}
	}
	return nil
}
