// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures the AWS SDK backend. With an empty Endpoint the
// client talks to AWS itself and picks credentials from the default chain
// unless AccessKey/SecretKey are set. With an Endpoint it uses path-style
// addressing against that S3-compatible service.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string // optional CDN/direct URL for objects
}

// S3 stores objects in a single bucket through the AWS SDK v2.
type S3 struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	publicURL string
}

// NewS3 creates an S3 storage client for cfg.Bucket.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")

	var client *s3.Client
	if endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, errors.New("s3 credentials are required with a custom endpoint")
		}
		client = s3.New(s3.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			UsePathStyle: true,
		})
	} else {
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
		if cfg.AccessKey != "" && cfg.SecretKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Put uploads an object with a public-read ACL so it can be linked directly.
func (c *S3) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(opt.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
		Metadata:    opt.Metadata,
	}
	if opt.Size >= 0 {
		input.ContentLength = aws.Int64(opt.Size)
	}

	out, err := c.client.PutObject(ctx, input)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}

	return ObjectInfo{
		Key:         key,
		Size:        opt.Size,
		ETag:        aws.ToString(out.ETag),
		ContentType: opt.ContentType,
		URL:         c.URL(key),
	}, nil
}

// Delete removes an object from the bucket.
func (c *S3) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// URL returns the public URL for key. Uses the configured public URL if
// set, a path-style URL for custom endpoints, and the virtual-hosted AWS
// URL otherwise.
func (c *S3) URL(key string) string {
	switch {
	case c.publicURL != "":
		return c.publicURL + "/" + key
	case c.endpoint != "":
		return c.endpoint + "/" + c.bucket + "/" + key
	default:
		return c.awsHost() + "/" + key
	}
}

// KeyFromURL extracts the object key from a URL produced by URL. Both
// virtual-hosted and path-style AWS URLs are recognised so images uploaded
// with either addressing style can be cleaned up.
func (c *S3) KeyFromURL(rawURL string) (string, bool) {
	if c.publicURL != "" {
		if key, ok := trimPrefix(rawURL, c.publicURL+"/"); ok {
			return key, true
		}
	}
	if c.endpoint != "" {
		if key, ok := trimPrefix(rawURL, c.endpoint+"/"+c.bucket+"/"); ok {
			return key, true
		}
	}
	if key, ok := trimPrefix(rawURL, c.awsHost()+"/"); ok {
		return key, true
	}
	if key, ok := trimPrefix(rawURL, "https://s3."+c.region+".amazonaws.com/"+c.bucket+"/"); ok {
		return key, true
	}
	return "", false
}

func (c *S3) awsHost() string {
	return "https://" + c.bucket + ".s3." + c.region + ".amazonaws.com"
}
