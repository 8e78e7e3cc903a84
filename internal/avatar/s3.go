package avatar

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Config holds the settings of the S3-compatible image host.
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
	URLValidity  time.Duration
}

// S3Uploader stores avatar images in an S3-compatible bucket and hands back a
// presigned GET URL for display.
type S3Uploader struct {
	config S3Config
}

func NewS3Uploader(config S3Config) *S3Uploader {
	return &S3Uploader{config: config}
}

// GetRandomStorageKey returns a date-partitioned object key; the original
// file name only contributes its extension.
func GetRandomStorageKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("avatars/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(name))
}

func (u *S3Uploader) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(u.config.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.config.RootUser,
			u.config.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.config.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload puts the image into the bucket under a random key and returns a
// presigned GET URL valid for the configured duration.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	client, err := u.getClient()
	if err != nil {
		return "", fmt.Errorf("configuring s3 client: %w", err)
	}

	bucket := u.config.Bucket
	key := GetRandomStorageKey(name)

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("uploading avatar object: %w", err)
	}

	presignClient := newS3PresignClient(client)

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(u.config.URLValidity))
	if err != nil {
		return "", fmt.Errorf("presigning avatar url: %w", err)
	}

	return req.URL, nil
}
