// Package oss mirrors rendered clip artifacts to Alibaba Cloud OSS so that
// downloads survive local task-dir cleanup.
package oss

import (
	"context"
	"fmt"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

type Client struct {
	client *oss.Client
	region string
	bucket string
}

func NewClient(region, accessKeyId, accessKeySecret, bucket string) *Client {
	cfg := oss.LoadDefaultConfig().
		WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret)).
		WithRegion(region)

	return &Client{
		client: oss.NewClient(cfg),
		region: region,
		bucket: bucket,
	}
}

// UploadFile puts a local file under key and returns the public object URL.
func (c *Client) UploadFile(ctx context.Context, key, localPath string) (string, error) {
	_, err := c.client.PutObjectFromFile(ctx, &oss.PutObjectRequest{
		Bucket: oss.Ptr(c.bucket),
		Key:    oss.Ptr(key),
	}, localPath)
	if err != nil {
		return "", fmt.Errorf("oss put object %q failed: %w", key, err)
	}
	return fmt.Sprintf("https://%s.oss-%s.aliyuncs.com/%s", c.bucket, c.region, key), nil
}
